package repository

import (
	"context"

	"github.com/fastygo/taskmanager/domain"
)

// TaskFilter scopes a listing. UserID is mandatory for every caller-facing query.
type TaskFilter struct {
	UserID string
	Status domain.Status
	Limit  int
	Offset int
}

// TaskRepository persists tasks. Every method that takes userID applies it as an
// owner filter, so a forged id never reaches another user's row.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
}
