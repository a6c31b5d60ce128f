package client

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/taskmanager/domain"
)

func ids(subtasks []domain.Subtask) []string {
	out := make([]string, len(subtasks))
	for i, s := range subtasks {
		out[i] = s.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func loaded(t *testing.T, store Store, seed func()) *SubtaskManager {
	t.Helper()
	seed()
	m := NewSubtaskManager(store, alice, "task-1", nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

func TestSubtaskAddAppendsAfterGap(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store, func() {
		store.seed("a", "task-1", "A", 0)
		store.seed("b", "task-1", "B", 1)
		store.seed("c", "task-1", "C", 3)
	})

	created, err := m.Add(context.Background(), "", "D")
	if err != nil {
		t.Fatal(err)
	}
	if created.OrderIndex != 4 {
		t.Fatalf("order index = %d, want 4", created.OrderIndex)
	}
	if got := ids(m.Subtasks()); !equal(got, []string{"a", "b", "c", created.ID}) {
		t.Fatalf("list = %v", got)
	}
}

func TestSubtaskAddForOtherParentIsNotAppended(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store, func() {})

	created, err := m.Add(context.Background(), "task-2", "elsewhere")
	if err != nil {
		t.Fatal(err)
	}
	if created.ParentTaskID != "task-2" {
		t.Fatalf("parent = %s", created.ParentTaskID)
	}
	if len(m.Subtasks()) != 0 {
		t.Fatalf("foreign subtask leaked into list: %v", m.Subtasks())
	}
}

func TestSubtaskToggleStatus(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store, func() { store.seed("a", "task-1", "A", 0) })
	ctx := context.Background()

	got, err := m.ToggleStatus(ctx, "a")
	if err != nil || got.Status != domain.StatusDone {
		t.Fatalf("first toggle: %+v %v", got, err)
	}
	got, err = m.ToggleStatus(ctx, "a")
	if err != nil || got.Status != domain.StatusPending {
		t.Fatalf("second toggle: %+v %v", got, err)
	}
	if _, err := m.ToggleStatus(ctx, "missing"); !errors.Is(err, ErrSubtaskNotLoaded) {
		t.Fatalf("missing toggle err = %v", err)
	}
}

func TestSubtaskUpdateFailureRecordsFallback(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store, func() { store.seed("a", "task-1", "A", 0) })
	store.failUpdateSubtask = errors.New("timeout")

	title := "renamed"
	if _, err := m.Update(context.Background(), "a", domain.SubtaskPatch{Title: &title}); err == nil {
		t.Fatal("expected failure")
	}
	if m.Err() != "Failed to update subtask" {
		t.Fatalf("error field = %q", m.Err())
	}
	if m.Subtasks()[0].Title != "A" {
		t.Fatal("failed update must not change the list")
	}
}

func TestSubtaskReorderRejectsNegative(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store, func() { store.seed("a", "task-1", "A", 0) })

	if _, err := m.Reorder(context.Background(), "a", -1); !errors.Is(err, domain.ErrInvalidOrder) {
		t.Fatalf("err = %v", err)
	}
	if store.called("SetSubtaskOrder") != 0 {
		t.Fatal("negative index reached the store")
	}
}

func TestSubtaskMoveRenumbersEverySibling(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store, func() {
		store.seed("a", "task-1", "A", 0)
		store.seed("b", "task-1", "B", 1)
		store.seed("c", "task-1", "C", 2)
		store.seed("d", "task-1", "D", 3)
	})

	if err := m.Move(context.Background(), "d", "b"); err != nil {
		t.Fatal(err)
	}

	want := []string{"a", "d", "b", "c"}
	if got := ids(m.Subtasks()); !equal(got, want) {
		t.Fatalf("local order = %v, want %v", got, want)
	}
	if n := store.called("SetSubtaskOrder"); n != len(want) {
		t.Fatalf("SetSubtaskOrder called %d times", n)
	}
	for i, id := range want {
		if store.orders[id] != i {
			t.Fatalf("%s got index %d, want %d", id, store.orders[id], i)
		}
	}
}

func TestSubtaskMoveOntoItselfIsNoop(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store, func() { store.seed("a", "task-1", "A", 0) })

	if err := m.Move(context.Background(), "a", "a"); err != nil {
		t.Fatal(err)
	}
	if store.called("SetSubtaskOrder") != 0 {
		t.Fatal("no-op move reached the store")
	}
}

func TestSubtaskMovePartialFailure(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store, func() {
		store.seed("a", "task-1", "A", 0)
		store.seed("b", "task-1", "B", 1)
		store.seed("c", "task-1", "C", 2)
	})
	store.failOrder = map[string]error{"c": errors.New("boom")}

	err := m.Move(context.Background(), "c", "a")
	if err == nil {
		t.Fatal("expected joined error")
	}
	if m.Err() != "Failed to update subtask order" {
		t.Fatalf("error field = %q", m.Err())
	}
	// a and b were renumbered to 1 and 2. c kept index 2 and sorts after b.
	if got := ids(m.Subtasks()); !equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("local order = %v", got)
	}
	if store.orders["a"] != 1 || store.orders["b"] != 2 {
		t.Fatalf("successful calls should stay applied: %v", store.orders)
	}
}

func TestSubtaskMoveUsesBatchWhenAvailable(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, batchStore{store}, func() {
		store.seed("a", "task-1", "A", 0)
		store.seed("b", "task-1", "B", 1)
	})

	if err := m.Move(context.Background(), "b", "a"); err != nil {
		t.Fatal(err)
	}
	if got := ids(m.Subtasks()); !equal(got, []string{"b", "a"}) {
		t.Fatalf("local order = %v", got)
	}
	if store.called("ReorderSubtasks") != 1 || store.called("SetSubtaskOrder") != 0 {
		t.Fatalf("calls = %v", store.calls)
	}
}

func TestSubtaskSignedOutLoadEmpties(t *testing.T) {
	store := newFakeStore()
	store.seed("a", "task-1", "A", 0)
	m := NewSubtaskManager(store, signedOut, "task-1", nil)
	ctx := context.Background()

	if err := m.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if len(m.Subtasks()) != 0 || store.total() != 0 {
		t.Fatalf("signed-out load fetched: %v", m.Subtasks())
	}
	if err := m.Move(ctx, "a", "b"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("move err = %v", err)
	}
}
