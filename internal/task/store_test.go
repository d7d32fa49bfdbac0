package task

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "buy milk")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if created.Completed {
		t.Fatal("new task should be pending")
	}
	if created.CompletedAt != nil {
		t.Fatal("new task should have no completion time")
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "buy milk" {
		t.Fatalf("unexpected name: %q", got.Name)
	}
}

func TestCreateTrimsAndRejectsEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "  padded  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "padded" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}

	if _, err := store.Create(ctx, "   "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestListOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.Create(ctx, name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	tasks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].Name != "first" || tasks[2].Name != "third" {
		t.Fatalf("unexpected order: %+v", tasks)
	}
}

func TestCompleteSetsTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "write report")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done, err := store.Complete(ctx, created.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed {
		t.Fatal("task should be completed")
	}
	if done.CompletedAt == nil {
		t.Fatal("completed task should carry a completion time")
	}

	// Completing again keeps the original completion time.
	again, err := store.Complete(ctx, created.ID)
	if err != nil {
		t.Fatalf("complete twice: %v", err)
	}
	if !again.CompletedAt.Equal(*done.CompletedAt) {
		t.Fatalf("completion time changed: %v != %v", again.CompletedAt, done.CompletedAt)
	}
}

func TestCompleteNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Complete(context.Background(), 999)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "flip me")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	on, err := store.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !on.Completed || on.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp: %+v", on)
	}

	off, err := store.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if off.Completed || off.CompletedAt != nil {
		t.Fatalf("expected pending without timestamp: %+v", off)
	}
}

func TestReopen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "redo me")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Complete(ctx, created.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	reopened, err := store.Reopen(ctx, created.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Completed || reopened.CompletedAt != nil {
		t.Fatalf("expected pending without timestamp: %+v", reopened)
	}

	if _, err := store.Reopen(ctx, 999); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "short-lived")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, created.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, created.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestClearCompletedAndStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, _ := store.Create(ctx, "done one")
	b, _ := store.Create(ctx, "done two")
	if _, err := store.Create(ctx, "still pending"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Complete(ctx, a.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := store.Complete(ctx, b.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Completed != 2 || stats.Pending != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("clear completed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	tasks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "still pending" {
		t.Fatalf("unexpected remaining tasks: %+v", tasks)
	}
}

func TestConcurrentCreateUniqueIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := store.Create(ctx, "concurrent")
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids <- created.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
