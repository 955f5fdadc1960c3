// Package idgen generates short, URL-safe record identifiers.
package idgen

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// DefaultLength is the number of characters in a generated id.
	DefaultLength = 8
	// Alphabet is the URL-safe character set ids are drawn from.
	Alphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generator produces identifiers for new records.
type Generator interface {
	Generate() (string, error)
}

// NanoID draws ids from a cryptographically secure random source. Ids are
// not checked for uniqueness; with 64^8 possible values collisions are
// negligible for a single collection.
type NanoID struct {
	Length int
}

// New returns a generator producing DefaultLength-character ids.
func New() NanoID {
	return NanoID{Length: DefaultLength}
}

// Generate returns a new random id.
func (g NanoID) Generate() (string, error) {
	n := g.Length
	if n <= 0 {
		n = DefaultLength
	}
	id, err := gonanoid.Generate(Alphabet, n)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}

// Func adapts an ordinary function to a Generator.
type Func func() (string, error)

// Generate calls f.
func (f Func) Generate() (string, error) { return f() }
