package client

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/taskmanager/domain"
)

func TestSuggestionCommitRemovesOnlySavedText(t *testing.T) {
	store := newFakeStore()
	subtasks := NewSubtaskManager(store, alice, "task-1", nil)
	suggester := suggesterFunc(func(_ context.Context, title string) ([]string, error) {
		if title != "Errands" {
			t.Errorf("title = %q", title)
		}
		return []string{"Buy milk", "Call vet"}, nil
	})
	c := NewSuggestionClient(suggester, alice, subtasks, nil)
	ctx := context.Background()

	if err := c.Generate(ctx, "Errands"); err != nil {
		t.Fatal(err)
	}
	if err := c.Commit(ctx, "Buy milk"); err != nil {
		t.Fatal(err)
	}

	if got := c.Suggestions(); len(got) != 1 || got[0] != "Call vet" {
		t.Fatalf("suggestions = %v", got)
	}
	list := subtasks.Subtasks()
	if len(list) != 1 || list[0].Title != "Buy milk" || list[0].ParentTaskID != "task-1" {
		t.Fatalf("subtasks = %+v", list)
	}
	if c.Busy("Buy milk") {
		t.Fatal("busy mark should be cleared")
	}
}

func TestSuggestionCommitFailureKeepsSuggestion(t *testing.T) {
	store := newFakeStore()
	store.failInsertSubtask = map[string]error{"Call vet": errors.New("offline")}
	subtasks := NewSubtaskManager(store, alice, "task-1", nil)
	c := NewSuggestionClient(suggesterFunc(func(context.Context, string) ([]string, error) {
		return []string{"Buy milk", "Call vet"}, nil
	}), alice, subtasks, nil)
	ctx := context.Background()

	c.Generate(ctx, "Errands")
	if err := c.Commit(ctx, "Call vet"); err == nil {
		t.Fatal("expected failure")
	}
	if got := c.Suggestions(); len(got) != 2 {
		t.Fatalf("suggestions = %v", got)
	}
	if c.Busy("Call vet") {
		t.Fatal("busy mark should be cleared after failure")
	}
}

func TestSuggestionGenerateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "domain error", err: domain.NewError(domain.ErrCodeInvalid, "Task title is required"), want: "Task title is required"},
		{name: "transport error", err: errors.New("dial tcp: refused"), want: "Failed to generate subtasks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSuggestionClient(suggesterFunc(func(context.Context, string) ([]string, error) {
				return nil, tt.err
			}), alice, NewSubtaskManager(newFakeStore(), alice, "task-1", nil), nil)

			if err := c.Generate(context.Background(), "x"); err == nil {
				t.Fatal("expected error")
			}
			if c.Err() != tt.want || c.Loading() || len(c.Suggestions()) != 0 {
				t.Fatalf("err=%q loading=%v suggestions=%v", c.Err(), c.Loading(), c.Suggestions())
			}
		})
	}
}

func TestSuggestionGenerateSignedOut(t *testing.T) {
	called := false
	c := NewSuggestionClient(suggesterFunc(func(context.Context, string) ([]string, error) {
		called = true
		return nil, nil
	}), signedOut, NewSubtaskManager(newFakeStore(), signedOut, "task-1", nil), nil)

	if err := c.Generate(context.Background(), "x"); err != nil || called {
		t.Fatalf("err=%v called=%v", err, called)
	}
}
