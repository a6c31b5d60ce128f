package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

type subtaskRepository struct {
	s *Store
}

func (r *subtaskRepository) List(_ context.Context, filter repository.SubtaskFilter) ([]domain.Subtask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.siblings(filter.UserID, filter.ParentTaskID), nil
}

func (r *subtaskRepository) Create(_ context.Context, subtask *domain.Subtask) (*domain.Subtask, error) {
	if subtask == nil || subtask.UserID == "" || subtask.ParentTaskID == "" {
		return nil, domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	parent, ok := r.s.tasks[subtask.ParentTaskID]
	if !ok || parent.task.UserID != subtask.UserID {
		return nil, domain.ErrTaskNotFound
	}

	if subtask.ID == "" {
		subtask.ID = uuid.NewString()
	}
	subtask.OrderIndex = domain.NextOrderIndex(r.siblings(subtask.UserID, subtask.ParentTaskID))
	now := r.s.tick()
	subtask.CreatedAt = now
	subtask.UpdatedAt = now

	r.s.subtasks[subtask.ID] = *subtask
	return subtask, nil
}

func (r *subtaskRepository) Update(_ context.Context, userID, id string, patch domain.SubtaskPatch) (*domain.Subtask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	subtask, ok := r.s.subtasks[id]
	if !ok || subtask.UserID != userID {
		return nil, domain.ErrSubtaskNotFound
	}
	patch.Apply(&subtask)
	subtask.UpdatedAt = r.s.tick()
	r.s.subtasks[id] = subtask
	return &subtask, nil
}

func (r *subtaskRepository) SetOrder(_ context.Context, userID, id string, index int) (*domain.Subtask, error) {
	if index < 0 {
		return nil, domain.ErrInvalidOrder
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	subtask, ok := r.s.subtasks[id]
	if !ok || subtask.UserID != userID {
		return nil, domain.ErrSubtaskNotFound
	}
	subtask.OrderIndex = index
	subtask.UpdatedAt = r.s.tick()
	r.s.subtasks[id] = subtask
	return &subtask, nil
}

// Reorder validates every id before writing so a bad id leaves all rows untouched.
func (r *subtaskRepository) Reorder(_ context.Context, userID, parentTaskID string, orderedIDs []string) ([]domain.Subtask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range orderedIDs {
		subtask, ok := r.s.subtasks[id]
		if !ok || subtask.UserID != userID || subtask.ParentTaskID != parentTaskID {
			return nil, domain.WrapError(domain.ErrCodeNotFound, "subtask not found", fmt.Errorf("id %s", id))
		}
	}

	for i, id := range orderedIDs {
		subtask := r.s.subtasks[id]
		subtask.OrderIndex = i
		subtask.UpdatedAt = r.s.tick()
		r.s.subtasks[id] = subtask
	}
	return r.siblings(userID, parentTaskID), nil
}

func (r *subtaskRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	subtask, ok := r.s.subtasks[id]
	if !ok || subtask.UserID != userID {
		return domain.ErrSubtaskNotFound
	}
	delete(r.s.subtasks, id)
	return nil
}

// siblings returns the parent's subtasks sorted by order index. Callers hold mu.
func (r *subtaskRepository) siblings(userID, parentTaskID string) []domain.Subtask {
	out := make([]domain.Subtask, 0)
	for _, subtask := range r.s.subtasks {
		if subtask.UserID == userID && subtask.ParentTaskID == parentTaskID {
			out = append(out, subtask)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
