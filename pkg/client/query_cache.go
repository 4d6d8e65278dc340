package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State is the resolution state of one cached fetch.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Fetcher loads the value stored under a key.
type Fetcher func(ctx context.Context) (interface{}, error)

// Snapshot is a read-only view of one cache entry.
type Snapshot struct {
	State     State
	Value     interface{}
	Err       error
	UpdatedAt time.Time
}

type cacheEntry struct {
	state     State
	value     interface{}
	err       error
	updatedAt time.Time
}

// QueryCache memoises fetches by resource path. Concurrent reads of one key share a
// single fetch. A failed fetch stays failed until Refetch or Invalidate; a cancelled
// one leaves the entry as it was.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	// gens is bumped by Invalidate so an in-flight fetch does not repopulate a dropped key.
	gens    map[string]uint64
	group   singleflight.Group
	now     func() time.Time
}

// NewQueryCache builds an empty cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

// Get returns the cached value for key, fetching it on first use or after Invalidate.
func (q *QueryCache) Get(ctx context.Context, key string, fetch Fetcher) (interface{}, error) {
	q.mu.Lock()
	entry, ok := q.entries[key]
	if ok {
		switch entry.state {
		case StateSuccess:
			value := entry.value
			q.mu.Unlock()
			return value, nil
		case StateError:
			err := entry.err
			q.mu.Unlock()
			return nil, err
		}
	}
	q.mu.Unlock()
	return q.load(ctx, key, fetch)
}

// Refetch ignores any cached value and fetches key again.
func (q *QueryCache) Refetch(ctx context.Context, key string, fetch Fetcher) (interface{}, error) {
	return q.load(ctx, key, fetch)
}

// Invalidate drops key so the next Get fetches it again.
func (q *QueryCache) Invalidate(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, key)
	q.gens[key]++
}

// State reports the state of key. Unknown keys are idle.
func (q *QueryCache) State(key string) State {
	return q.Peek(key).State
}

// Peek returns the current entry without fetching.
func (q *QueryCache) Peek(key string) Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	entry, ok := q.entries[key]
	if !ok {
		return Snapshot{State: StateIdle}
	}
	return Snapshot{State: entry.state, Value: entry.value, Err: entry.err, UpdatedAt: entry.updatedAt}
}

func (q *QueryCache) load(ctx context.Context, key string, fetch Fetcher) (interface{}, error) {
	q.mu.Lock()
	gen := q.gens[key]
	q.mu.Unlock()

	// Keyed by generation so a read after Invalidate never joins a fetch that started before it.
	value, err, _ := q.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (interface{}, error) {
		q.mu.Lock()
		if q.gens[key] != gen {
			q.mu.Unlock()
			return fetch(ctx)
		}
		entry, ok := q.entries[key]
		if !ok {
			entry = &cacheEntry{}
			q.entries[key] = entry
		}
		prev := *entry
		entry.state = StateLoading
		q.mu.Unlock()

		value, err := fetch(ctx)

		q.mu.Lock()
		defer q.mu.Unlock()
		if q.gens[key] != gen {
			return value, err
		}
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			// The caller gave up; that says nothing about the resource.
			if prev.state == "" {
				delete(q.entries, key)
			} else {
				*entry = prev
			}
			return nil, err
		}
		entry.updatedAt = q.now()
		if err != nil {
			entry.state, entry.value, entry.err = StateError, nil, err
			return nil, err
		}
		entry.state, entry.value, entry.err = StateSuccess, value, nil
		return value, nil
	})
	return value, err
}
