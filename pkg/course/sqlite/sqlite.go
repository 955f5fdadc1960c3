// Package sqlite implements a course repository on an embedded SQLite
// database.
//
// Table:
//
//	courses(seq, id, doc)  seq orders rows by insertion, id is unique
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"courseflow/pkg/course"
)

const schema = `CREATE TABLE IF NOT EXISTS courses (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id  TEXT NOT NULL UNIQUE,
	doc TEXT NOT NULL
)`

// Repository persists courses in SQLite.
type Repository struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create courses table: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts a new course.
func (r *Repository) Create(ctx context.Context, c course.Course) error {
	if c.ID() == "" {
		return fmt.Errorf("%w: id is required", course.ErrInvalid)
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode course: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.db.ExecContext(ctx, "INSERT INTO courses (id, doc) VALUES (?, ?)", c.ID(), string(doc)); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// Get retrieves a course by ID.
func (r *Repository) Get(ctx context.Context, id string) (course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return get(ctx, r.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q querier, id string) (course.Course, error) {
	var doc string
	err := q.QueryRowContext(ctx, "SELECT doc FROM courses WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, course.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select course: %w", err)
	}
	return course.Unmarshal([]byte(doc))
}

// List fetches all courses in insertion order.
func (r *Repository) List(ctx context.Context) ([]course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows, err := r.db.QueryContext(ctx, "SELECT doc FROM courses ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("select courses: %w", err)
	}
	defer rows.Close()
	courses := []course.Course{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		c, err := course.Unmarshal([]byte(doc))
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Update merges fields into an existing course inside a transaction.
func (r *Repository) Update(ctx context.Context, id string, fields course.Course) (course.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	updated := current.Merge(fields)
	doc, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("encode course: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE courses SET doc = ? WHERE id = ?", string(doc), id); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return updated, nil
}

// Delete removes a course by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return course.ErrNotFound
	}
	return nil
}
