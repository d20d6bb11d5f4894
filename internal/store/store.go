// Package store provides a synchronous observable state container.
//
// A Store holds one state value and a list of listeners. SetState replaces
// the state and notifies every listener, in registration order, before it
// returns. Listeners may subscribe or unsubscribe while being notified: the
// pass in progress always sees the listener list as it was when the pass
// started, and the next SetState sees the changes.
package store

// Listener is called with the new state after every SetState.
type Listener[S any] func(state S)

// Unsubscribe removes a listener. Calling it more than once is a no-op.
type Unsubscribe func()

// entry is one registration. The same function subscribed twice is two
// entries, so each Unsubscribe removes exactly its own registration.
type entry[S any] struct {
	fn Listener[S]
}

// Store is an observable state container.
//
// A Store is not safe for concurrent use. Listener lists are copy-on-write:
// current is the snapshot pinned by the last notification pass, next is the
// list that Subscribe and Unsubscribe edit. While aliased is true both refer
// to the same backing array and next must be copied before it is edited.
type Store[S any] struct {
	state   S
	current []*entry[S]
	next    []*entry[S]
	aliased bool
}

// New creates a store holding initial.
func New[S any](initial S) *Store[S] {
	return &Store[S]{
		state:   initial,
		aliased: true,
	}
}

// State returns the current state.
// Reference types are returned as is; callers should treat them as read-only.
func (s *Store[S]) State() S {
	return s.state
}

// SetState replaces the state with update(state) and notifies listeners.
// It returns the new state.
//
// Every call notifies, even if update returns the previous value. A panic
// in update leaves the state untouched and notifies nobody; a panic in a
// listener stops the pass and reaches the caller.
func (s *Store[S]) SetState(update func(S) S) S {
	s.state = update(s.state)

	s.current = s.next
	s.aliased = true
	listeners := s.current
	for _, e := range listeners {
		e.fn(s.state)
	}
	return s.state
}

// Subscribe registers l and returns a function that removes it again.
// Each call is its own registration: the returned function removes exactly
// that registration, not the first listener equal to l.
func (s *Store[S]) Subscribe(l Listener[S]) Unsubscribe {
	s.prepareNext()

	e := &entry[S]{fn: l}
	s.next = append(s.next, e)

	subscribed := true
	return func() {
		if !subscribed {
			return
		}
		subscribed = false
		s.remove(e)
	}
}

// Len returns the number of listeners the next SetState will notify.
func (s *Store[S]) Len() int {
	return len(s.next)
}

// prepareNext makes next safe to edit without touching current.
func (s *Store[S]) prepareNext() {
	if !s.aliased {
		return
	}
	next := make([]*entry[S], len(s.next), len(s.next)+1)
	copy(next, s.next)
	s.next = next
	s.aliased = false
}

// remove deletes e from next.
func (s *Store[S]) remove(e *entry[S]) {
	s.prepareNext()
	for i, existing := range s.next {
		if existing == e {
			s.next = append(s.next[:i], s.next[i+1:]...)
			return
		}
	}
}
