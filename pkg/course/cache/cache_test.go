package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"courseflow/pkg/course"
	"courseflow/pkg/course/memory"
	"courseflow/pkg/logger"
)

// countingRepo records how many reads reach the wrapped repository.
type countingRepo struct {
	course.Repository
	lists, gets int
}

func (c *countingRepo) List(ctx context.Context) ([]course.Course, error) {
	c.lists++
	return c.Repository.List(ctx)
}

func (c *countingRepo) Get(ctx context.Context, id string) (course.Course, error) {
	c.gets++
	return c.Repository.Get(ctx, id)
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	l, err := NewLRU(16)
	if err != nil {
		t.Fatalf("lru: %v", err)
	}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return map[string]Backend{
		"lru":   l,
		"redis": NewRedis(client, "test:", time.Minute),
	}
}

func TestReadThroughAndInvalidation(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			inner := &countingRepo{Repository: memory.New(course.Course{"id": "1", "name": "OSS"})}
			repo := New(inner, backend, logger.Nop())

			for i := 0; i < 3; i++ {
				if _, err := repo.Get(ctx, "1"); err != nil {
					t.Fatalf("get: %v", err)
				}
				if _, err := repo.List(ctx); err != nil {
					t.Fatalf("list: %v", err)
				}
			}
			if inner.gets != 1 || inner.lists != 1 {
				t.Fatalf("expected one backing read each, got gets=%d lists=%d", inner.gets, inner.lists)
			}

			if _, err := repo.Update(ctx, "1", course.Course{"name": "Open Source"}); err != nil {
				t.Fatalf("update: %v", err)
			}
			got, _ := repo.Get(ctx, "1")
			if got["name"] != "Open Source" {
				t.Fatalf("stale course after update: %v", got)
			}

			if err := repo.Create(ctx, course.Course{"id": "2"}); err != nil {
				t.Fatalf("create: %v", err)
			}
			list, _ := repo.List(ctx)
			if len(list) != 2 {
				t.Fatalf("stale list after create: %v", list)
			}

			if err := repo.Delete(ctx, "1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := repo.Get(ctx, "1"); !errors.Is(err, course.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			list, _ = repo.List(ctx)
			if len(list) != 1 || list[0].ID() != "2" {
				t.Fatalf("stale list after delete: %v", list)
			}
		})
	}
}

func TestMissesAreNotCached(t *testing.T) {
	ctx := context.Background()
	l, _ := NewLRU(4)
	inner := &countingRepo{Repository: memory.New()}
	repo := New(inner, l, logger.Nop())

	repo.Get(ctx, "x")
	repo.Get(ctx, "x")
	if inner.gets != 2 {
		t.Fatalf("expected misses to reach the repository, got %d", inner.gets)
	}
}

func TestRedisOutageFallsThrough(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	repo := New(memory.New(course.Course{"id": "1"}), NewRedis(client, "", 0), logger.Nop())

	mr.Close()
	if _, err := repo.Get(ctx, "1"); err != nil {
		t.Fatalf("get with redis down: %v", err)
	}
	if err := repo.Delete(ctx, "1"); err != nil {
		t.Fatalf("delete with redis down: %v", err)
	}
}

func TestRedisKeysExpire(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	backend := NewRedis(client, "courses:", time.Second)

	if err := backend.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("courses:k") {
		t.Fatal("expected prefixed key")
	}
	mr.FastForward(2 * time.Second)
	if _, ok, _ := backend.Get(ctx, "k"); ok {
		t.Fatal("expected key to expire")
	}
}
