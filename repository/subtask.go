package repository

import (
	"context"

	"github.com/fastygo/taskmanager/domain"
)

type SubtaskFilter struct {
	UserID       string
	ParentTaskID string
}

// SubtaskRepository persists subtasks ordered by order_index within a parent.
type SubtaskRepository interface {
	// List returns the parent's subtasks sorted by order_index ascending.
	List(ctx context.Context, filter SubtaskFilter) ([]domain.Subtask, error)
	// Create assigns the next order index for the parent atomically and fails
	// with domain.ErrTaskNotFound when the parent is not owned by subtask.UserID.
	Create(ctx context.Context, subtask *domain.Subtask) (*domain.Subtask, error)
	Update(ctx context.Context, userID, id string, patch domain.SubtaskPatch) (*domain.Subtask, error)
	SetOrder(ctx context.Context, userID, id string, index int) (*domain.Subtask, error)
	// Reorder assigns index i to orderedIDs[i] in a single transaction.
	Reorder(ctx context.Context, userID, parentTaskID string, orderedIDs []string) ([]domain.Subtask, error)
	Delete(ctx context.Context, userID, id string) error
}
