package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverseOnce(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	boom := errors.New("boom")

	m.Register("postgres", func(context.Context) error { order = append(order, "postgres"); return nil })
	m.Register("buffer", func(context.Context) error { order = append(order, "buffer"); return boom })
	m.Register("http_server", func(context.Context) error { order = append(order, "http_server"); return nil })

	err := m.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined hook error, got %v", err)
	}
	want := []string{"http_server", "buffer", "postgres"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}

	if err := m.Shutdown(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("second shutdown should repeat the first result, got %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("hooks ran twice: %v", order)
	}
}

func TestShutdownPassesDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	var hadDeadline bool
	m.Register("probe", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !hadDeadline {
		t.Fatal("hook context carried no deadline")
	}
}
