// Package cache provides a read-through caching decorator for a
// course.Repository.
//
// Single courses and the full list are cached as JSON. Every successful
// mutation invalidates the affected course and the list. Backend failures
// never fail a request: reads fall through to the repository and write
// errors are logged.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	"courseflow/pkg/course"
	"courseflow/pkg/logger"
)

// Backend stores encoded values by key.
type Backend interface {
	// Get returns the value for key. ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

const listKey = "courses:all"

func courseKey(id string) string { return "course:" + id }

// Repository wraps another repository with a cache.
type Repository struct {
	// mu keeps a read from re-filling an entry that a concurrent mutation
	// has just invalidated.
	mu      sync.RWMutex
	next    course.Repository
	backend Backend
	log     *logger.Logger
}

// New returns a caching decorator around next.
func New(next course.Repository, backend Backend, log *logger.Logger) *Repository {
	return &Repository{next: next, backend: backend, log: log}
}

// List returns all courses, from the cache when possible.
func (r *Repository) List(ctx context.Context) ([]course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if data, ok := r.lookup(ctx, listKey); ok {
		var courses []course.Course
		if err := decodeJSON(data, &courses); err == nil && courses != nil {
			return courses, nil
		}
	}
	courses, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, listKey, courses)
	return courses, nil
}

// Get returns a course by ID, from the cache when possible. Misses are not
// cached.
func (r *Repository) Get(ctx context.Context, id string) (course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if data, ok := r.lookup(ctx, courseKey(id)); ok {
		if c, err := course.Unmarshal(data); err == nil {
			return c, nil
		}
	}
	c, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, courseKey(id), c)
	return c, nil
}

// Create stores the course and drops the cached list.
func (r *Repository) Create(ctx context.Context, c course.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.next.Create(ctx, c); err != nil {
		return err
	}
	r.invalidate(ctx, c.ID())
	return nil
}

// Update merges fields into a course and drops its cache entries.
func (r *Repository) Update(ctx context.Context, id string, fields course.Course) (course.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated, err := r.next.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return updated, nil
}

// Delete removes a course and its cache entries.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *Repository) lookup(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := r.backend.Get(ctx, key)
	if err != nil {
		r.log.Warn(ctx, "cache get", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

func (r *Repository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.log.Warn(ctx, "cache encode", "key", key, "error", err)
		return
	}
	if err := r.backend.Set(ctx, key, data); err != nil {
		r.log.Warn(ctx, "cache set", "key", key, "error", err)
	}
}

func (r *Repository) invalidate(ctx context.Context, id string) {
	if err := r.backend.Delete(ctx, courseKey(id), listKey); err != nil {
		r.log.Warn(ctx, "cache invalidate", "id", id, "error", err)
	}
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}
