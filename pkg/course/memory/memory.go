// Package memory implements an in-memory course repository.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"courseflow/pkg/course"
)

// Repository provides an in-memory implementation of course.Repository.
type Repository struct {
	mu      sync.RWMutex
	courses []course.Course
}

// New creates a new in-memory repository, optionally seeded with courses.
func New(seed ...course.Course) *Repository {
	return &Repository{courses: course.CloneAll(seed)}
}

func (r *Repository) indexOf(id string) int {
	return slices.IndexFunc(r.courses, func(c course.Course) bool { return c.ID() == id })
}

// Create stores the course.
func (r *Repository) Create(ctx context.Context, c course.Course) error {
	if c.ID() == "" {
		return fmt.Errorf("%w: id is required", course.ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses = append(r.courses, c.Clone())
	return nil
}

// Get retrieves a course by ID.
func (r *Repository) Get(ctx context.Context, id string) (course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, course.ErrNotFound
	}
	return r.courses[i].Clone(), nil
}

// List returns all courses in insertion order.
func (r *Repository) List(ctx context.Context) ([]course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return course.CloneAll(r.courses), nil
}

// Update merges fields into an existing course.
func (r *Repository) Update(ctx context.Context, id string, fields course.Course) (course.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, course.ErrNotFound
	}
	r.courses[i] = r.courses[i].Merge(fields)
	return r.courses[i].Clone(), nil
}

// Delete removes a course by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return course.ErrNotFound
	}
	r.courses = slices.Delete(r.courses, i, i+1)
	return nil
}
