package normalize

import (
	"container/list"
	"sync"

	"minigram/pkg/minigram"
)

const defaultCacheEntries = 10000

// ReplyCache stores normalized messages for reply-chain resolution, keyed by
// chat id and message id. Implementations must be safe for concurrent use.
type ReplyCache interface {
	Get(chatID int64, messageID int) (*minigram.Message, bool)
	Put(chatID int64, messageID int, message *minigram.Message)
}

// CacheOption mutates message cache configuration.
type CacheOption func(*MessageCache)

// WithMaxEntries sets the in-memory cache capacity.
func WithMaxEntries(maxEntries int) CacheOption {
	return func(cache *MessageCache) {
		if maxEntries > 0 {
			cache.maxEntries = maxEntries
		}
	}
}

// MessageCache is a bounded in-memory ReplyCache. Eviction follows insertion
// order: reads do not refresh an entry, so the oldest write always goes
// first. Concurrent writers to one key race benignly, last writer wins.
type MessageCache struct {
	maxEntries int

	mu      sync.RWMutex
	entries map[cacheKey]*list.Element
	order   *list.List
}

type cacheKey struct {
	chatID    int64
	messageID int
}

type cacheEntry struct {
	key     cacheKey
	message *minigram.Message
}

// NewMessageCache creates a message cache with bounded in-memory storage.
func NewMessageCache(options ...CacheOption) *MessageCache {
	cache := &MessageCache{
		maxEntries: defaultCacheEntries,
		entries:    make(map[cacheKey]*list.Element),
		order:      list.New(),
	}
	for _, option := range options {
		option(cache)
	}

	return cache
}

var _ ReplyCache = (*MessageCache)(nil)

// Get returns the cached message for the key, if present.
func (c *MessageCache) Get(chatID int64, messageID int) (*minigram.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	element, ok := c.entries[cacheKey{chatID: chatID, messageID: messageID}]
	if !ok {
		return nil, false
	}

	return element.Value.(*cacheEntry).message, true
}

// Put stores a message under the key, re-inserting an existing entry at the
// front of the eviction order.
func (c *MessageCache) Put(chatID int64, messageID int, message *minigram.Message) {
	if message == nil {
		return
	}
	key := cacheKey{chatID: chatID, messageID: messageID}

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		element.Value.(*cacheEntry).message = message
		c.order.MoveToFront(element)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, message: message})
	c.trimToCapacityLocked()
}

// Len returns the number of cached entries.
func (c *MessageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *MessageCache) trimToCapacityLocked() {
	for len(c.entries) > c.maxEntries {
		back := c.order.Back()
		if back == nil {
			break
		}
		delete(c.entries, back.Value.(*cacheEntry).key)
		c.order.Remove(back)
	}
}
