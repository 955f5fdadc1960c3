package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"courseflow/pkg/course"
)

func openTemp(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courses.db")
	repo, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo, _ := openTemp(t)

	c := course.Course{"id": "1", "name": "OSS", "semester": "Spring", "department": "CE"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, c); err == nil {
		t.Fatal("expected duplicate id to fail")
	}
	got, err := repo.Get(ctx, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["department"] != "CE" {
		t.Fatalf("unexpected course: %v", got)
	}

	updated, err := repo.Update(ctx, "1", course.Course{"semester": "Fall", "id": "9"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID() != "1" || updated["semester"] != "Fall" || updated["name"] != "OSS" {
		t.Fatalf("unexpected update: %v", updated)
	}
	if _, err := repo.Update(ctx, "missing", course.Course{"x": "y"}); !errors.Is(err, course.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "1"); !errors.Is(err, course.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo, path := openTemp(t)
	for _, id := range []string{"c", "a", "b"} {
		if err := repo.Create(ctx, course.Course{"id": id}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	repo.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	list, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID() != "c" || list[1].ID() != "a" || list[2].ID() != "b" {
		t.Fatalf("unexpected order: %v", list)
	}
}
