package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/repository/memory"
)

type flakyUsers struct {
	repository.UserRepository
	err error
}

func (f *flakyUsers) UpdateName(context.Context, string, string) (*domain.User, error) {
	return nil, f.err
}

type profileBuffer struct {
	users []*domain.User
}

func (b *profileBuffer) BufferProfile(_ context.Context, _ string, user *domain.User) error {
	b.users = append(b.users, user)
	return nil
}
func (b *profileBuffer) BufferTask(context.Context, string, *domain.Task) error       { return nil }
func (b *profileBuffer) BufferSubtask(context.Context, string, *domain.Subtask) error { return nil }

func TestUpdateProfileRenames(t *testing.T) {
	users := memory.NewStore().Users()
	ctx := context.Background()
	user := &domain.User{Email: "ann@example.com"}
	if err := users.Create(ctx, user); err != nil {
		t.Fatal(err)
	}

	uc := New(users, nil, nil)
	updated, err := uc.UpdateProfile(ctx, user.ID, "  Ann  ")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Ann" {
		t.Fatalf("name = %q", updated.Name)
	}
	if _, err := uc.UpdateProfile(ctx, "missing", "x"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfileBuffersOnOutage(t *testing.T) {
	buf := &profileBuffer{}
	uc := New(&flakyUsers{err: errors.New("db down")}, buf, nil)

	user, err := uc.UpdateProfile(context.Background(), "u1", "Ann")
	if err != nil {
		t.Fatalf("expected buffered success, got %v", err)
	}
	if user.Name != "Ann" || len(buf.users) != 1 {
		t.Fatalf("buffered %d users, returned %+v", len(buf.users), user)
	}
}
