package mockapi

import (
	"sync"

	"github.com/google/uuid"
)

// collection is an ordered in-memory table of API records
type collection[T any] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
	idOf  func(*T) *string
}

func newCollection[T any](idOf func(*T) *string) *collection[T] {
	return &collection[T]{items: make(map[string]T), idOf: idOf}
}

func (c *collection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	return item, ok
}

func (c *collection[T]) create(item T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.idOf(&item)
	if *id == "" {
		*id = uuid.New().String()
	}
	if _, exists := c.items[*id]; !exists {
		c.order = append(c.order, *id)
	}
	c.items[*id] = item
	return item
}

func (c *collection[T]) update(id string, item T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		var zero T
		return zero, false
	}
	*c.idOf(&item) = id
	c.items[id] = item
	return item, true
}

// modify applies fn to a stored item under the write lock
func (c *collection[T]) modify(id string, fn func(*T)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		return item, false
	}
	fn(&item)
	c.items[id] = item
	return item, true
}

func (c *collection[T]) delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *collection[T]) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
