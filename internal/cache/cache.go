package cache

import (
	"container/list"
	"fmt"
	"strings"
	"sync"

	"drift-notes/internal/models"
)

const maxEntries = 256

// Cache is a small LRU of single-note reads, keyed per owner so one
// user's writes never flush another's entries.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*list.Element
	order *list.List
	max   int
}

type entry struct {
	key  string
	note *models.Note
}

func New() *Cache {
	return &Cache{
		items: make(map[string]*list.Element),
		order: list.New(),
		max:   maxEntries,
	}
}

// NoteKey builds the cache key for one note of one owner.
func NoteKey(userID, noteID string) string {
	return fmt.Sprintf("user:%s:note:%s", userID, noteID)
}

// UserPrefix is the key prefix shared by all of one owner's entries.
func UserPrefix(userID string) string {
	return fmt.Sprintf("user:%s:", userID)
}

func (c *Cache) Get(key string) (*models.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if elem, ok := c.items[key]; ok {
		return elem.Value.(*entry).note, true
	}
	return nil, false
}

func (c *Cache) Set(key string, note *models.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*entry).note = note
		return
	}

	if c.order.Len() >= c.max {
		oldest := c.order.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(*entry).key)
			c.order.Remove(oldest)
		}
	}

	c.items[key] = c.order.PushFront(&entry{key: key, note: note})
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		delete(c.items, key)
		c.order.Remove(elem)
	}
}

// InvalidateByPrefix drops every entry whose key starts with prefix.
// Category cascades and bulk deletes use it to flush a whole owner.
func (c *Cache) InvalidateByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, elem := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			c.order.Remove(elem)
		}
	}
}
