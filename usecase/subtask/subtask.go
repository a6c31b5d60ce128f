package subtask

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/usecase"
)

type UseCase struct {
	subtasks repository.SubtaskRepository
	tasks    repository.TaskRepository
	buffer   usecase.OperationBuffer
	logger   *zap.Logger
}

func New(subtasks repository.SubtaskRepository, tasks repository.TaskRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		subtasks: subtasks,
		tasks:    tasks,
		buffer:   buffer,
		logger:   logger,
	}
}

// ListSubtasks returns the parent's subtasks in order_index order.
func (uc *UseCase) ListSubtasks(ctx context.Context, userID, parentTaskID string) ([]domain.Subtask, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if parentTaskID == "" {
		return nil, domain.ErrParentRequired
	}
	return uc.subtasks.List(ctx, repository.SubtaskFilter{UserID: userID, ParentTaskID: parentTaskID})
}

func (uc *UseCase) CreateSubtask(ctx context.Context, userID, parentTaskID, title string) (*domain.Subtask, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	subtask, err := domain.NewSubtask(userID, parentTaskID, title)
	if err != nil {
		return nil, err
	}
	subtask.ID = uuid.NewString()

	created, err := uc.subtasks.Create(ctx, subtask)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		subtask.Touch()
		if !uc.shouldBuffer(ctx, usecase.OperationCreate, subtask) {
			return nil, err
		}
		// The buffer retries at once. When that landed, answer with the stored
		// row and its real order index.
		if stored := uc.stored(ctx, subtask); stored != nil {
			return stored, nil
		}
		return subtask, nil
	}
	return created, nil
}

func (uc *UseCase) UpdateSubtask(ctx context.Context, userID, id string, patch domain.SubtaskPatch) (*domain.Subtask, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := patch.Normalize(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, domain.ErrEmptyPatch
	}
	return uc.subtasks.Update(ctx, userID, id, patch)
}

// SetOrder moves one subtask to index without touching its siblings.
func (uc *UseCase) SetOrder(ctx context.Context, userID, id string, index int) (*domain.Subtask, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if index < 0 {
		return nil, domain.ErrInvalidOrder
	}
	return uc.subtasks.SetOrder(ctx, userID, id, index)
}

// Reorder gives orderedIDs[i] the index i in one transaction.
func (uc *UseCase) Reorder(ctx context.Context, userID, parentTaskID string, orderedIDs []string) ([]domain.Subtask, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if parentTaskID == "" {
		return nil, domain.ErrParentRequired
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if id == "" {
			return nil, domain.ErrInvalidPayload
		}
		if _, dup := seen[id]; dup {
			return nil, domain.NewError(domain.ErrCodeInvalid, "duplicate subtask id in order")
		}
		seen[id] = struct{}{}
	}
	if _, err := uc.tasks.GetByID(ctx, userID, parentTaskID); err != nil {
		return nil, err
	}
	return uc.subtasks.Reorder(ctx, userID, parentTaskID, orderedIDs)
}

func (uc *UseCase) DeleteSubtask(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if err := uc.subtasks.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrSubtaskNotFound) {
			return err
		}
		subtask := &domain.Subtask{ID: id, UserID: userID}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, subtask) {
			return nil
		}
		return err
	}
	return nil
}

// stored looks up a buffered subtask among its siblings. It returns nil when
// the row is still queued or the store is unreachable.
func (uc *UseCase) stored(ctx context.Context, subtask *domain.Subtask) *domain.Subtask {
	siblings, err := uc.subtasks.List(ctx, repository.SubtaskFilter{UserID: subtask.UserID, ParentTaskID: subtask.ParentTaskID})
	if err != nil {
		return nil
	}
	for i := range siblings {
		if siblings[i].ID == subtask.ID {
			return &siblings[i]
		}
	}
	return nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, subtask *domain.Subtask) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferSubtask(ctx, operation, subtask); err != nil {
		uc.logger.Error("failed to buffer subtask operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("subtask operation buffered", zap.String("operation", operation), zap.String("subtask_id", subtask.ID))
	return true
}
