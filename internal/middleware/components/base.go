package components

import "reflect"

// unloadBinder is satisfied by anything embedding Base.
type unloadBinder interface {
	bindUnload(fn func())
}

// Base carries the bookkeeping most components need. Embed it by value.
//
// Changed reports whether props differ from the previous render, and Unload
// removes the component from the cache it was resolved from. A component
// that declares its own Unload method shadows Base.Unload and is no longer
// evicted automatically.
type Base struct {
	prev    any
	hasPrev bool
	unload  func()
}

// Changed records props and reports whether they differ from the props of
// the previous call. The first call always reports true. Maps and structs
// are compared one level deep.
func (b *Base) Changed(props any) bool {
	changed := !b.hasPrev || !ShallowEqual(b.prev, props)
	b.prev = props
	b.hasPrev = true
	return changed
}

// Prev returns the props recorded by the last Changed call.
func (b *Base) Prev() any {
	return b.prev
}

// Unload evicts the component from its cache.
func (b *Base) Unload() {
	if b.unload != nil {
		b.unload()
	}
}

func (b *Base) bindUnload(fn func()) {
	if b.unload == nil {
		b.unload = fn
	}
}

// ShallowEqual compares a and b one level deep. Slice and array elements,
// map entries and exported struct fields must be identical: equal when
// comparable, the same reference otherwise.
func ShallowEqual(a, b any) bool {
	if identical(a, b) {
		return true
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() || va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Slice, reflect.Array:
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !identicalValues(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() || !identicalValues(iter.Value(), other) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if !va.Type().Field(i).IsExported() {
				continue
			}
			if !identicalValues(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	}
	return false
}

// identical reports whether a and b are equal without looking inside them.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return identicalValues(reflect.ValueOf(a), reflect.ValueOf(b))
}

// identicalValues compares with == when both values are comparable at run
// time and by reference otherwise. It never panics.
func identicalValues(va, vb reflect.Value) bool {
	for va.Kind() == reflect.Interface && !va.IsNil() {
		va = va.Elem()
	}
	for vb.Kind() == reflect.Interface && !vb.IsNil() {
		vb = vb.Elem()
	}
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	switch va.Kind() {
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	}
	return false
}
