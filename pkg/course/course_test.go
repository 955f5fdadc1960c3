package course

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestMergeKeepsIDAndUnspecifiedFields(t *testing.T) {
	c := Course{"id": "abc", "a": "1", "b": "2"}
	got := c.Merge(Course{"b": "new", "c": "3", "id": "other"})

	if got.ID() != "abc" {
		t.Fatalf("expected id abc, got %q", got.ID())
	}
	if got["a"] != "1" || got["b"] != "new" || got["c"] != "3" {
		t.Fatalf("unexpected merge result: %v", got)
	}
	if c["b"] != "2" {
		t.Fatalf("merge mutated the original: %v", c)
	}
}

func TestWithIDOverridesClientID(t *testing.T) {
	c := Course{"id": "client", "name": "OSS"}
	got := c.WithID("server")
	if got.ID() != "server" {
		t.Fatalf("expected server id, got %q", got.ID())
	}
	if c.ID() != "client" {
		t.Fatal("WithID mutated the original")
	}
	if Course(nil).WithID("x").ID() != "x" {
		t.Fatal("expected id on nil course")
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := Course{"tags": []any{"a"}, "meta": map[string]any{"k": "v"}}
	cp := c.Clone()
	cp["tags"].([]any)[0] = "b"
	cp["meta"].(map[string]any)["k"] = "w"

	if c["tags"].([]any)[0] != "a" || c["meta"].(map[string]any)["k"] != "v" {
		t.Fatalf("clone shares nested values: %v", c)
	}
}

func TestValidate(t *testing.T) {
	ok := Course{"name": "OSS", "semester": "Spring", "department": "CE"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Course{"name": "OSS", "semester": "  ", "department": nil}.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if strings.Join(verr.Missing, ",") != "semester,department" {
		t.Fatalf("unexpected missing fields: %v", verr.Missing)
	}
}

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader(`{"name":"OSS","credits":12345678901234567890}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b, _ := json.Marshal(c)
	if !strings.Contains(string(b), `"credits":12345678901234567890`) {
		t.Fatalf("number not preserved: %s", b)
	}

	for _, body := range []string{"", "null", "[1,2]", "{"} {
		if _, err := Decode(strings.NewReader(body)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("body %q: expected ErrInvalid, got %v", body, err)
		}
	}
}
