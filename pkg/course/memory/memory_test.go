package memory

import (
	"context"
	"errors"
	"testing"

	"courseflow/pkg/course"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := New()
	c := course.Course{"id": "1", "name": "OSS", "semester": "Spring", "department": "CE"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.Get(ctx, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["name"] != "OSS" {
		t.Fatalf("expected OSS, got %v", got["name"])
	}
	updated, err := repo.Update(ctx, "1", course.Course{"semester": "Fall", "id": "2"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID() != "1" || updated["semester"] != "Fall" || updated["department"] != "CE" {
		t.Fatalf("unexpected update: %v", updated)
	}
	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	if err := repo.Delete(ctx, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "1"); !errors.Is(err, course.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "1"); !errors.Is(err, course.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := New(course.Course{"id": "b"}, course.Course{"id": "a"})
	repo.Create(ctx, course.Course{"id": "c"})

	list, _ := repo.List(ctx)
	if len(list) != 3 || list[0].ID() != "b" || list[1].ID() != "a" || list[2].ID() != "c" {
		t.Fatalf("unexpected order: %v", list)
	}
}
