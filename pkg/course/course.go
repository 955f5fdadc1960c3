package course

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Course is a single course record. It is an open JSON object: besides the
// system-assigned id and the required name, semester and department fields,
// clients may store any additional fields.
type Course map[string]any

// Field names with special meaning.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldSemester   = "semester"
	FieldDepartment = "department"
)

// RequiredFields must be present when a course is created.
var RequiredFields = []string{FieldName, FieldSemester, FieldDepartment}

// Repository defines behavior for persisting courses. Implementations keep
// courses in insertion order and serialise mutations.
type Repository interface {
	List(ctx context.Context) ([]Course, error)
	Get(ctx context.Context, id string) (Course, error)
	Create(ctx context.Context, c Course) error
	Update(ctx context.Context, id string, fields Course) (Course, error)
	Delete(ctx context.Context, id string) error
}

var (
	// ErrNotFound indicates the requested course does not exist.
	ErrNotFound = errors.New("course not found")
	// ErrInvalid indicates a course failed validation.
	ErrInvalid = errors.New("invalid course")
)

// ValidationError lists the required fields a course is missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// ID returns the course id, or "" if it is unset or not a string.
func (c Course) ID() string {
	id, _ := c[FieldID].(string)
	return id
}

// Validate reports a *ValidationError if any required field is absent,
// null or a blank string.
func (c Course) Validate() error {
	var missing []string
	for _, f := range RequiredFields {
		v, ok := c[f]
		if !ok || v == nil {
			missing = append(missing, f)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// WithID returns a copy of c whose id is set to id, overriding any id the
// caller supplied.
func (c Course) WithID(id string) Course {
	out := c.Clone()
	if out == nil {
		out = Course{}
	}
	out[FieldID] = id
	return out
}

// Merge returns a copy of c with fields shallowly applied on top. Keys in
// fields overwrite keys in c, except the id which is never changed.
func (c Course) Merge(fields Course) Course {
	out := c.Clone()
	if out == nil {
		out = Course{}
	}
	for k, v := range fields {
		if k == FieldID {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Clone returns a deep copy of c.
func (c Course) Clone() Course {
	if c == nil {
		return nil
	}
	out := make(Course, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

// CloneAll deep copies a slice of courses. The result is never nil.
func CloneAll(cs []Course) []Course {
	out := make([]Course, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case Course:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}
