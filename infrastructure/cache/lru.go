package cache

import (
	"container/list"
	"sync"
)

// NamespaceLRU is a namespace-based LRU cache. Capacity counts entries across
// all namespaces.
type NamespaceLRU struct {
	capacity int
	items    map[string]*list.Element
	queue    *list.List
	mutex    sync.Mutex
	hits     uint64
	misses   uint64
	onEvict  func(namespace, key string, value interface{})
}

type entry struct {
	namespace string
	key       string
	value     interface{}
}

// Stats is a point-in-time view of cache usage
type Stats struct {
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// NewNamespaceLRU creates a new namespace-based LRU cache with specified capacity
func NewNamespaceLRU(capacity int) *NamespaceLRU {
	if capacity < 1 {
		capacity = 1
	}
	return &NamespaceLRU{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		queue:    list.New(),
	}
}

// OnEvict registers a callback run for entries dropped by capacity pressure
func (c *NamespaceLRU) OnEvict(fn func(namespace, key string, value interface{})) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.onEvict = fn
}

func compositeKey(namespace, key string) string {
	return namespace + ":" + key
}

// Set adds or updates a key-value pair in the cache with a namespace
func (c *NamespaceLRU) Set(namespace, key string, value interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ck := compositeKey(namespace, key)
	if element, exists := c.items[ck]; exists {
		c.queue.MoveToFront(element)
		element.Value.(*entry).value = value
		return
	}

	element := c.queue.PushFront(&entry{
		namespace: namespace,
		key:       key,
		value:     value,
	})
	c.items[ck] = element

	if c.queue.Len() > c.capacity {
		c.evict()
	}
}

// Get retrieves a value from the cache by namespace and key and marks it
// recently used
func (c *NamespaceLRU) Get(namespace, key string) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	element, exists := c.items[compositeKey(namespace, key)]
	if !exists {
		c.misses++
		return nil, false
	}

	c.hits++
	c.queue.MoveToFront(element)
	return element.Value.(*entry).value, true
}

// Invalidate removes an item from the cache by namespace and key
func (c *NamespaceLRU) Invalidate(namespace, key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ck := compositeKey(namespace, key)
	if element, exists := c.items[ck]; exists {
		c.queue.Remove(element)
		delete(c.items, ck)
	}
}

// Size returns the current number of items in the cache
func (c *NamespaceLRU) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.queue.Len()
}

// Stats returns size and hit counters
func (c *NamespaceLRU) Stats() Stats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return Stats{Size: c.queue.Len(), Hits: c.hits, Misses: c.misses}
}

// evict removes the least recently used item from the cache
func (c *NamespaceLRU) evict() {
	element := c.queue.Back()
	if element == nil {
		return
	}

	c.queue.Remove(element)
	e := element.Value.(*entry)
	delete(c.items, compositeKey(e.namespace, e.key))
	if c.onEvict != nil {
		c.onEvict(e.namespace, e.key, e.value)
	}
}
