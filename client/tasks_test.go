package client

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/taskmanager/domain"
)

func TestTaskManagerSignedOutMakesNoCalls(t *testing.T) {
	store := newFakeStore()
	m := NewTaskManager(store, signedOut, nil)
	ctx := context.Background()

	if err := m.Load(ctx); err != nil {
		t.Fatalf("signed-out load should be a no-op: %v", err)
	}
	if _, err := m.Add(ctx, "Walk dog", domain.PriorityLow); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("add err = %v", err)
	}
	if m.Err() != "User not authenticated" {
		t.Fatalf("error field = %q", m.Err())
	}
	if err := m.Delete(ctx, "task-1"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("delete err = %v", err)
	}
	if store.total() != 0 {
		t.Fatalf("store was called %d times", store.total())
	}
}

func TestTaskManagerAddPrependsAndDefaultsPriority(t *testing.T) {
	store := newFakeStore()
	m := NewTaskManager(store, alice, nil)
	ctx := context.Background()

	if _, err := m.Add(ctx, "first", domain.PriorityUrgent); err != nil {
		t.Fatal(err)
	}
	second, err := m.Add(ctx, "  second  ", "")
	if err != nil {
		t.Fatal(err)
	}
	if second.Priority != domain.PriorityMedium || second.Title != "second" {
		t.Fatalf("unexpected task %+v", second)
	}

	tasks := m.Tasks()
	if len(tasks) != 2 || tasks[0].Title != "second" || tasks[1].Title != "first" {
		t.Fatalf("list should be newest first: %+v", tasks)
	}
}

func TestTaskManagerRejectsBadInputLocally(t *testing.T) {
	store := newFakeStore()
	m := NewTaskManager(store, alice, nil)
	ctx := context.Background()

	if _, err := m.Add(ctx, "   ", domain.PriorityLow); !errors.Is(err, domain.ErrTitleRequired) {
		t.Fatalf("blank title err = %v", err)
	}
	if _, err := m.Add(ctx, "x", domain.Priority("critical")); !errors.Is(err, domain.ErrInvalidPriority) {
		t.Fatalf("priority err = %v", err)
	}
	if _, err := m.Update(ctx, "task-1", domain.TaskPatch{}); !errors.Is(err, domain.ErrEmptyPatch) {
		t.Fatalf("empty patch err = %v", err)
	}
	if store.total() != 0 {
		t.Fatalf("store was called %d times", store.total())
	}
}

func TestTaskManagerUpdateReplacesInPlace(t *testing.T) {
	store := newFakeStore()
	m := NewTaskManager(store, alice, nil)
	ctx := context.Background()

	first, _ := m.Add(ctx, "first", domain.PriorityLow)
	m.Add(ctx, "second", domain.PriorityLow)

	done := domain.StatusDone
	if _, err := m.Update(ctx, first.ID, domain.TaskPatch{Status: &done}); err != nil {
		t.Fatal(err)
	}
	tasks := m.Tasks()
	if tasks[1].ID != first.ID || tasks[1].Status != domain.StatusDone {
		t.Fatalf("update should keep position: %+v", tasks)
	}
}

func TestTaskManagerErrorStaysUntilCleared(t *testing.T) {
	store := newFakeStore()
	store.failInsertTask = errors.New("connection reset")
	m := NewTaskManager(store, alice, nil)
	ctx := context.Background()

	if _, err := m.Add(ctx, "first", domain.PriorityLow); err == nil {
		t.Fatal("expected failure")
	}
	if m.Err() != "Failed to add task" {
		t.Fatalf("error field = %q", m.Err())
	}
	if len(m.Tasks()) != 0 {
		t.Fatal("failed insert must not touch the list")
	}

	store.failInsertTask = nil
	if _, err := m.Add(ctx, "second", domain.PriorityLow); err != nil {
		t.Fatal(err)
	}
	if m.Err() != "Failed to add task" {
		t.Fatalf("success should not clear the error, got %q", m.Err())
	}
	m.ClearError()
	if m.Err() != "" {
		t.Fatal("ClearError did not reset the field")
	}
}

func TestTaskManagerLoadFailureKeepsList(t *testing.T) {
	store := newFakeStore()
	m := NewTaskManager(store, alice, nil)
	ctx := context.Background()
	m.Add(ctx, "kept", domain.PriorityLow)

	store.failList = domain.NewError(domain.ErrCodeInternal, "database unavailable")
	if err := m.Load(ctx); err == nil {
		t.Fatal("expected failure")
	}
	if m.Err() != "database unavailable" {
		t.Fatalf("error field = %q", m.Err())
	}
	if len(m.Tasks()) != 1 || m.Loading() {
		t.Fatalf("tasks=%v loading=%v", m.Tasks(), m.Loading())
	}
}
