package components

// Cache stores components by key.
type Cache interface {
	Get(key string) (Component, bool)
	Set(key string, c Component)
	Remove(key string)
}

// MapCache is the default in-memory Cache.
// It is not safe for concurrent use.
type MapCache struct {
	items map[string]Component
}

// NewCache creates an empty MapCache.
func NewCache() *MapCache {
	return &MapCache{items: make(map[string]Component)}
}

// Get returns the component stored under key.
func (c *MapCache) Get(key string) (Component, bool) {
	comp, ok := c.items[key]
	return comp, ok
}

// Set stores comp under key, replacing any previous entry.
func (c *MapCache) Set(key string, comp Component) {
	c.items[key] = comp
}

// Remove deletes key. Removing a missing key is a no-op.
func (c *MapCache) Remove(key string) {
	delete(c.items, key)
}

// Len returns the number of cached components.
func (c *MapCache) Len() int {
	return len(c.items)
}

// Keys returns the cached keys in no particular order.
func (c *MapCache) Keys() []string {
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}
