package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"courseflow/pkg/course"
)

// Schema creates the courses table. Courses are stored as JSONB documents;
// seq preserves insertion order.
const Schema = `CREATE TABLE IF NOT EXISTS courses (
	seq BIGSERIAL PRIMARY KEY,
	id  TEXT NOT NULL UNIQUE,
	doc JSONB NOT NULL
)`

// Repository persists courses in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository. Call EnsureSchema before use.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the courses table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create courses table: %w", err)
	}
	return nil
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
	if _, err := r.db.ExecContext(ctx, "INSERT INTO courses (id,doc) VALUES ($1,$2)", c.ID(), doc); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// Get retrieves a course by ID.
func (r *Repository) Get(ctx context.Context, id string) (course.Course, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx, "SELECT doc FROM courses WHERE id=$1", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, course.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select course: %w", err)
	}
	return course.Unmarshal(doc)
}

// List fetches all courses in insertion order.
func (r *Repository) List(ctx context.Context) ([]course.Course, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT doc FROM courses ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("select courses: %w", err)
	}
	defer rows.Close()
	courses := []course.Course{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		c, err := course.Unmarshal(doc)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Update merges fields into an existing course. The merge is a shallow
// JSONB concatenation; the stored id is re-applied last so it always wins.
func (r *Repository) Update(ctx context.Context, id string, fields course.Course) (course.Course, error) {
	patch, err := json.Marshal(course.Course{}.Merge(fields))
	if err != nil {
		return nil, fmt.Errorf("encode course: %w", err)
	}
	var doc []byte
	err = r.db.QueryRowContext(ctx,
		"UPDATE courses SET doc = (doc || $2::jsonb) || jsonb_build_object('id', id) WHERE id=$1 RETURNING doc",
		id, patch).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, course.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course.Unmarshal(doc)
}

// Delete removes a course by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return course.ErrNotFound
	}
	return nil
}
