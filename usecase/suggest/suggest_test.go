package suggest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/fastygo/taskmanager/domain"
)

type generatorFunc func(ctx context.Context, taskTitle string, limit int) ([]string, error)

func (f generatorFunc) Generate(ctx context.Context, taskTitle string, limit int) ([]string, error) {
	return f(ctx, taskTitle, limit)
}

func TestSuggestSubtasksCleansOutput(t *testing.T) {
	var gotTitle string
	var gotLimit int
	gen := generatorFunc(func(_ context.Context, title string, limit int) ([]string, error) {
		gotTitle, gotLimit = title, limit
		return []string{" Buy milk ", "", "Call vet", "buy MILK", "Walk dog", "Feed cat"}, nil
	})
	uc := New(gen, 3, nil)

	got, err := uc.SuggestSubtasks(context.Background(), "  Prepare for weekend ")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Buy milk", "Call vet", "Walk dog"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if gotTitle != "Prepare for weekend" || gotLimit != 3 {
		t.Errorf("generator called with %q, %d", gotTitle, gotLimit)
	}
}

func TestSuggestSubtasksErrors(t *testing.T) {
	if _, err := New(nil, 0, nil).SuggestSubtasks(context.Background(), " "); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("blank title: expected invalid, got %v", err)
	}

	if _, err := New(nil, 0, nil).SuggestSubtasks(context.Background(), "x"); !domain.IsDomainError(err, domain.ErrCodeInternal) {
		t.Fatalf("no generator: expected internal, got %v", err)
	}

	upstream := errors.New("rate limited")
	gen := generatorFunc(func(context.Context, string, int) ([]string, error) { return nil, upstream })
	_, err := New(gen, 0, nil).SuggestSubtasks(context.Background(), "x")
	if !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
	var dErr *domain.Error
	if !errors.As(err, &dErr) || dErr.Message != "Failed to generate subtasks" {
		t.Fatalf("unexpected message: %v", err)
	}
}
