package normalize

import (
	"sync"
	"testing"

	"minigram/pkg/minigram"
)

func TestMessageCacheEvictsOldestInsert(t *testing.T) {
	t.Parallel()

	cache := NewMessageCache(WithMaxEntries(2))
	cache.Put(1, 10, &minigram.Message{ID: 10})
	cache.Put(1, 11, &minigram.Message{ID: 11})

	// Reads must not refresh an entry's position.
	if _, ok := cache.Get(1, 10); !ok {
		t.Fatal("expected entry (1, 10)")
	}

	cache.Put(1, 12, &minigram.Message{ID: 12})

	if _, ok := cache.Get(1, 10); ok {
		t.Fatal("entry (1, 10) should have been evicted despite the read")
	}
	if _, ok := cache.Get(1, 11); !ok {
		t.Fatal("expected entry (1, 11) to survive")
	}
	if _, ok := cache.Get(1, 12); !ok {
		t.Fatal("expected entry (1, 12)")
	}
	if got := cache.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}
}

func TestMessageCacheOverwriteReinserts(t *testing.T) {
	t.Parallel()

	cache := NewMessageCache(WithMaxEntries(2))
	cache.Put(1, 10, &minigram.Message{ID: 10, Text: "old"})
	cache.Put(1, 11, &minigram.Message{ID: 11})
	cache.Put(1, 10, &minigram.Message{ID: 10, Text: "new"})
	cache.Put(1, 12, &minigram.Message{ID: 12})

	got, ok := cache.Get(1, 10)
	if !ok {
		t.Fatal("rewritten entry should survive eviction")
	}
	if got.Text != "new" {
		t.Fatalf("Text = %q, want %q", got.Text, "new")
	}
	if _, ok := cache.Get(1, 11); ok {
		t.Fatal("entry (1, 11) should have been evicted")
	}
}

func TestMessageCacheKeysByChatAndMessage(t *testing.T) {
	t.Parallel()

	cache := NewMessageCache()
	cache.Put(1, 10, &minigram.Message{ID: 10, Text: "chat one"})
	cache.Put(2, 10, &minigram.Message{ID: 10, Text: "chat two"})

	got, ok := cache.Get(2, 10)
	if !ok {
		t.Fatal("expected entry (2, 10)")
	}
	if got.Text != "chat two" {
		t.Fatalf("Text = %q, want %q", got.Text, "chat two")
	}
}

func TestMessageCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache := NewMessageCache(WithMaxEntries(64))

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := i % 32
				cache.Put(int64(worker), id, &minigram.Message{ID: id})
				cache.Get(int64(worker), id)
			}
		}(worker)
	}
	wg.Wait()

	if got := cache.Len(); got > 64 {
		t.Fatalf("Len = %d, want at most 64", got)
	}
}
