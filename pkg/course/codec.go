package course

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode reads a single JSON object from r. Numbers are kept as json.Number
// so client values round-trip unchanged.
func Decode(r io.Reader) (Course, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var c Course
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty body", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalid)
	}
	return c, nil
}

// Unmarshal decodes a stored JSON document into a course.
func Unmarshal(data []byte) (Course, error) {
	return Decode(bytes.NewReader(data))
}
