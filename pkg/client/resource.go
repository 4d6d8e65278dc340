package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrDeleteNotConfirmed is returned when a delete was declined. No request is sent.
var ErrDeleteNotConfirmed = errors.New("delete not confirmed")

// Confirm asks the user whether the entity with id may be deleted.
type Confirm func(id string) bool

// Resource is list/detail CRUD over one collection path such as /students.
// Lists are cached under the path and dropped after every successful mutation.
type Resource[T any] struct {
	client *Client
	cache  *QueryCache
	path   string
}

// NewResource binds a collection path to a client and a shared cache.
func NewResource[T any](client *Client, cache *QueryCache, path string) *Resource[T] {
	if cache == nil {
		cache = NewQueryCache()
	}
	return &Resource[T]{client: client, cache: cache, path: "/" + strings.Trim(path, "/")}
}

// Path is the cache key of the list.
func (r *Resource[T]) Path() string {
	return r.path
}

// List returns the whole collection, from cache when available.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return r.items(r.cache.Get(ctx, r.path, r.fetchList))
}

// Refetch reloads the list. It is the manual retry after a failed List.
func (r *Resource[T]) Refetch(ctx context.Context) ([]T, error) {
	return r.items(r.cache.Refetch(ctx, r.path, r.fetchList))
}

// State reports the resolution state of the cached list.
func (r *Resource[T]) State() State {
	return r.cache.State(r.path)
}

// Get fetches one entity.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	if err := r.client.Do(ctx, http.MethodGet, r.itemPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts body to the collection.
func (r *Resource[T]) Create(ctx context.Context, body interface{}) (*T, error) {
	var out T
	if err := r.client.Do(ctx, http.MethodPost, r.path, body, &out); err != nil {
		return nil, err
	}
	r.cache.Invalidate(r.path)
	return &out, nil
}

// Update patches the entity with the supplied fields only.
func (r *Resource[T]) Update(ctx context.Context, id string, patch interface{}) (*T, error) {
	var out T
	if err := r.client.Do(ctx, http.MethodPatch, r.itemPath(id), patch, &out); err != nil {
		return nil, err
	}
	r.cache.Invalidate(r.path)
	return &out, nil
}

// Delete removes the entity once confirm approves it. A nil confirm counts as declined.
func (r *Resource[T]) Delete(ctx context.Context, id string, confirm Confirm) error {
	if confirm == nil || !confirm(id) {
		return ErrDeleteNotConfirmed
	}
	if err := r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil); err != nil {
		return err
	}
	r.cache.Invalidate(r.path)
	return nil
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[T]) fetchList(ctx context.Context) (interface{}, error) {
	var out []T
	if err := r.client.Do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r *Resource[T]) items(value interface{}, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	items, ok := value.([]T)
	if !ok {
		return nil, fmt.Errorf("cached value under %s has type %T", r.path, value)
	}
	return items, nil
}
