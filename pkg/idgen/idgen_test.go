package idgen

import (
	"strings"
	"testing"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	g := New()
	for i := 0; i < 1000; i++ {
		id, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(id) != DefaultLength {
			t.Fatalf("expected %d chars, got %q", DefaultLength, id)
		}
		for _, r := range id {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("id %q contains %q outside the URL-safe alphabet", id, r)
			}
		}
	}
}

func TestGenerateNoDuplicates(t *testing.T) {
	g := New()
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d ids", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestZeroValueUsesDefaultLength(t *testing.T) {
	id, err := NanoID{}.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(id) != DefaultLength {
		t.Fatalf("expected %d chars, got %q", DefaultLength, id)
	}
}
