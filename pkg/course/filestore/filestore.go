// Package filestore implements a course repository kept in memory and
// mirrored to a single JSON document on disk.
//
// The document has the form
//
//	{
//	  "courses": [ {...}, {...} ]
//	}
//
// and is rewritten in full after every mutation. Other top-level keys found
// in the file are preserved.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/google/renameio/v2"

	"courseflow/pkg/course"
)

const collectionKey = "courses"

// Store is a file-backed implementation of course.Repository.
type Store struct {
	mu      sync.RWMutex
	path    string
	courses []course.Course
	extra   map[string]json.RawMessage
}

// Open loads the store at path, creating the file with an empty collection
// if it does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load replaces the in-memory collection with the persisted one. A missing
// or empty file yields an empty collection, which is written immediately.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		s.courses, s.extra = []course.Course{}, nil
		return s.persist(s.courses)
	}

	courses, extra, found, err := parse(data)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.path, err)
	}
	s.courses, s.extra = courses, extra
	if !found {
		return s.persist(s.courses)
	}
	return nil
}

func parse(data []byte) ([]course.Course, map[string]json.RawMessage, bool, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, false, err
	}
	if doc == nil {
		return nil, nil, false, errors.New("document is not a JSON object")
	}
	raw, found := doc[collectionKey]
	delete(doc, collectionKey)

	var items []json.RawMessage
	if found {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, nil, false, fmt.Errorf("%q is not an array: %w", collectionKey, err)
		}
	}

	courses := make([]course.Course, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		c, err := course.Unmarshal(item)
		if err != nil {
			return nil, nil, false, fmt.Errorf("record %d: %w", i, err)
		}
		id := c.ID()
		if id == "" {
			return nil, nil, false, fmt.Errorf("record %d: missing id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, nil, false, fmt.Errorf("record %d: duplicate id %q", i, id)
		}
		seen[id] = struct{}{}
		courses = append(courses, c)
	}
	if len(doc) == 0 {
		doc = nil
	}
	return courses, doc, found, nil
}

// Persist writes the whole collection to disk. The file is replaced
// atomically, so readers never observe a partial write.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(s.courses)
}

// persist must be called with s.mu held for writing.
func (s *Store) persist(courses []course.Course) error {
	doc := make(map[string]any, len(s.extra)+1)
	for k, v := range s.extra {
		doc[k] = v
	}
	if courses == nil {
		courses = []course.Course{}
	}
	doc[collectionKey] = courses

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("persist courses: %w", err)
	}
	data = append(data, '\n')
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("persist courses: %w", err)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.courses, func(c course.Course) bool { return c.ID() == id })
}

// List returns all courses in insertion order.
func (s *Store) List(ctx context.Context) ([]course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return course.CloneAll(s.courses), nil
}

// Get retrieves a course by ID.
func (s *Store) Get(ctx context.Context, id string) (course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, course.ErrNotFound
	}
	return s.courses[i].Clone(), nil
}

// Create appends c and persists the collection. The caller is responsible
// for assigning a unique id.
func (s *Store) Create(ctx context.Context, c course.Course) error {
	if c.ID() == "" {
		return fmt.Errorf("%w: id is required", course.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(slices.Clip(s.courses), c.Clone())
	if err := s.persist(next); err != nil {
		return err
	}
	s.courses = next
	return nil
}

// Update merges fields into the course with the given id and persists the
// collection. The id itself is never changed.
func (s *Store) Update(ctx context.Context, id string, fields course.Course) (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, course.ErrNotFound
	}
	next := slices.Clone(s.courses)
	next[i] = s.courses[i].Merge(fields)
	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.courses = next
	return next[i].Clone(), nil
}

// Delete removes the course with the given id and persists the collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return course.ErrNotFound
	}
	next := slices.Delete(slices.Clone(s.courses), i, i+1)
	if err := s.persist(next); err != nil {
		return err
	}
	s.courses = next
	return nil
}
