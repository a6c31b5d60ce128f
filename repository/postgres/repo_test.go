package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

// testPool connects to TEST_DATABASE_URL and applies the schema. Tests are
// skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../assets/migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return pool
}

func newUser(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	user := &domain.User{ID: id, Email: id + "@example.com", PasswordHash: "x"}
	if err := NewUserRepository(pool).Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func newTask(t *testing.T, pool *pgxpool.Pool, userID string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(userID, "Errands", domain.PriorityMedium)
	if err != nil {
		t.Fatal(err)
	}
	task.ID = uuid.NewString()
	created, err := NewTaskRepository(pool).Create(context.Background(), task)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return created
}

func TestTasksAreOwnerScoped(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool)
	alice, bob := newUser(t, pool), newUser(t, pool)
	task := newTask(t, pool, alice)

	if _, err := repo.GetByID(ctx, bob, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("foreign read err = %v", err)
	}
	title := "stolen"
	if _, err := repo.Update(ctx, bob, task.ID, domain.TaskPatch{Title: &title}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("foreign update err = %v", err)
	}
	if err := repo.Delete(ctx, bob, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("foreign delete err = %v", err)
	}
}

func TestSubtaskIndexesAndReorder(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewSubtaskRepository(pool)
	alice := newUser(t, pool)
	task := newTask(t, pool, alice)

	var ids []string
	for i, title := range []string{"A", "B", "C"} {
		subtask, err := domain.NewSubtask(alice, task.ID, title)
		if err != nil {
			t.Fatal(err)
		}
		subtask.ID = uuid.NewString()
		created, err := repo.Create(ctx, subtask)
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		if created.OrderIndex != i {
			t.Fatalf("%s index = %d, want %d", title, created.OrderIndex, i)
		}
		ids = append(ids, created.ID)
	}

	if _, err := repo.Reorder(ctx, alice, task.ID, []string{ids[2], ids[0], "missing"}); err == nil {
		t.Fatal("reorder with an unknown id should fail")
	}
	list, _ := repo.List(ctx, repository.SubtaskFilter{UserID: alice, ParentTaskID: task.ID})
	if list[0].ID != ids[0] {
		t.Fatal("failed reorder must leave indexes untouched")
	}

	ordered, err := repo.Reorder(ctx, alice, task.ID, []string{ids[2], ids[0], ids[1]})
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{ids[2], ids[0], ids[1]} {
		if ordered[i].ID != want || ordered[i].OrderIndex != i {
			t.Fatalf("position %d = %+v", i, ordered[i])
		}
	}

	bob := newUser(t, pool)
	foreign, _ := domain.NewSubtask(bob, task.ID, "intruder")
	foreign.ID = uuid.NewString()
	if _, err := repo.Create(ctx, foreign); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("foreign parent err = %v", err)
	}
}

func TestTaskListWithoutLimitReturnsEveryRow(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool)
	alice := newUser(t, pool)

	const total = maxPageSize + 5
	for i := 0; i < total; i++ {
		newTask(t, pool, alice)
	}

	all, err := repo.List(ctx, repository.TaskFilter{UserID: alice})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != total {
		t.Fatalf("unbounded list returned %d rows, want %d", len(all), total)
	}

	page, err := repo.List(ctx, repository.TaskFilter{UserID: alice, Limit: 10, Offset: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 5 {
		t.Fatalf("last page returned %d rows, want 5", len(page))
	}
}
