package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

type taskRepository struct {
	s *Store
}

func (r *taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]taskRow, 0)
	for _, row := range r.s.tasks {
		if row.task.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && row.task.Status != filter.Status {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].task.CreatedAt.Equal(rows[j].task.CreatedAt) {
			return rows[i].task.CreatedAt.After(rows[j].task.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range page(rows, filter.Offset, filter.Limit) {
		tasks = append(tasks, row.task)
	}
	return tasks, nil
}

func (r *taskRepository) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.tasks[id]
	if !ok || row.task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	task := row.task
	return &task, nil
}

func (r *taskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := r.s.tick()
	task.CreatedAt = now
	task.UpdatedAt = now

	r.s.seq++
	r.s.tasks[task.ID] = taskRow{task: *task, seq: r.s.seq}
	return task, nil
}

func (r *taskRepository) Update(_ context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tasks[id]
	if !ok || row.task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	patch.Apply(&row.task)
	row.task.UpdatedAt = r.s.tick()
	r.s.tasks[id] = row

	task := row.task
	return &task, nil
}

func (r *taskRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tasks[id]
	if !ok || row.task.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	for sid, subtask := range r.s.subtasks {
		if subtask.ParentTaskID == id {
			delete(r.s.subtasks, sid)
		}
	}
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
