package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesRebuiltError(t *testing.T) {
	rebuilt := NewError(ErrCodeUnauthorized, "User not authenticated")
	if !errors.Is(rebuilt, ErrUnauthenticated) {
		t.Fatal("expected rebuilt error to match the sentinel")
	}
	if errors.Is(NewError(ErrCodeUnauthorized, "other"), ErrUnauthenticated) {
		t.Fatal("different message must not match")
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrTaskNotFound)
	if got := CodeOf(wrapped); got != ErrCodeNotFound {
		t.Errorf("CodeOf = %s", got)
	}
	if got := CodeOf(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("CodeOf(plain) = %s", got)
	}
	if !IsDomainError(wrapped, ErrCodeNotFound) {
		t.Error("IsDomainError should see through wrapping")
	}
}
