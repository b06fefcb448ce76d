package records

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

type fakeCache struct {
	mu     sync.Mutex
	values map[string][]byte
	fail   bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, errors.New("conexão recusada")
	}
	v, ok := c.values[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(string(c.values[key]), 10, 64)
	n++
	c.values[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

type countingStore struct {
	Store
	lists int
	gets  int
}

func (s *countingStore) List(ctx context.Context, collection string) ([]Record, error) {
	s.lists++
	return s.Store.List(ctx, collection)
}

func (s *countingStore) Get(ctx context.Context, collection, id string) (Record, error) {
	s.gets++
	return s.Store.Get(ctx, collection, id)
}

func TestCachedStoreServesReadsFromCache(t *testing.T) {
	backend := &countingStore{Store: NewMemoryStore()}
	store := NewCachedStore(backend, newFakeCache(), time.Minute)
	ctx := context.Background()

	rec, _ := store.Create(ctx, CollectionTasks, Record{"name": "a"})
	for i := 0; i < 3; i++ {
		if _, err := store.List(ctx, CollectionTasks); err != nil {
			t.Fatalf("list: %v", err)
		}
		got, err := store.Get(ctx, CollectionTasks, rec.ID())
		if err != nil || got["name"] != "a" {
			t.Fatalf("get: %v %v", got, err)
		}
	}
	if backend.lists != 1 || backend.gets != 1 {
		t.Fatalf("expected one backend read each got lists=%d gets=%d", backend.lists, backend.gets)
	}
}

func TestCachedStoreInvalidatesOnWrite(t *testing.T) {
	backend := &countingStore{Store: NewMemoryStore()}
	store := NewCachedStore(backend, newFakeCache(), time.Minute)
	ctx := context.Background()

	rec, _ := store.Create(ctx, CollectionTasks, Record{"name": "a"})
	_, _ = store.Get(ctx, CollectionTasks, rec.ID())

	if _, err := store.Update(ctx, CollectionTasks, rec.ID(), Record{"name": "b"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.Get(ctx, CollectionTasks, rec.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["name"] != "b" {
		t.Fatalf("stale read after update: %v", got)
	}

	list, _ := store.List(ctx, CollectionTasks)
	_ = store.Delete(ctx, CollectionTasks, rec.ID())
	after, _ := store.List(ctx, CollectionTasks)
	if len(list) != 1 || len(after) != 0 {
		t.Fatalf("list not invalidated by delete: before=%d after=%d", len(list), len(after))
	}
}

func TestCachedStoreFallsBackWhenCacheFails(t *testing.T) {
	cache := newFakeCache()
	cache.fail = true
	backend := &countingStore{Store: NewMemoryStore()}
	store := NewCachedStore(backend, cache, time.Minute)
	ctx := context.Background()

	if _, err := store.List(ctx, CollectionTasks); err != nil {
		t.Fatalf("list must work without cache: %v", err)
	}
	if _, err := store.List(ctx, CollectionTasks); err != nil {
		t.Fatalf("list: %v", err)
	}
	if backend.lists != 2 {
		t.Fatalf("expected backend reads when cache is down got %d", backend.lists)
	}
}
