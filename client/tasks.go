package client

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
)

// TaskManager keeps the signed-in user's tasks, newest first.
type TaskManager struct {
	store  Store
	users  UserSource
	logger *zap.Logger

	mu      sync.RWMutex
	tasks   []domain.Task
	loading bool
	errMsg  string
}

func NewTaskManager(store Store, users UserSource, logger *zap.Logger) *TaskManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskManager{store: store, users: users, logger: logger}
}

// Load replaces the list with the server's. Signed out, the list is emptied
// without a request. A failed fetch keeps the previous list.
func (m *TaskManager) Load(ctx context.Context) error {
	if !signedIn(m.users) {
		m.mu.Lock()
		m.tasks = nil
		m.loading = false
		m.mu.Unlock()
		return nil
	}

	m.setLoading(true)
	defer m.setLoading(false)

	tasks, err := m.store.ListTasks(ctx)
	if err != nil {
		return m.fail(err, "An error occurred")
	}

	m.mu.Lock()
	m.tasks = tasks
	m.mu.Unlock()
	return nil
}

// Add creates a pending task and prepends it.
func (m *TaskManager) Add(ctx context.Context, title string, priority domain.Priority) (*domain.Task, error) {
	if !signedIn(m.users) {
		return nil, m.fail(domain.ErrUnauthenticated, "")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, m.fail(domain.ErrTitleRequired, "")
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, m.fail(domain.ErrInvalidPriority, "")
	}

	task, err := m.store.InsertTask(ctx, title, priority)
	if err != nil {
		return nil, m.fail(err, "Failed to add task")
	}

	m.mu.Lock()
	m.tasks = append([]domain.Task{*task}, m.tasks...)
	m.mu.Unlock()
	return task, nil
}

// Update applies patch on the server and swaps the fresh row in place.
func (m *TaskManager) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if !signedIn(m.users) {
		return nil, m.fail(domain.ErrUnauthenticated, "")
	}
	if err := patch.Normalize(); err != nil {
		return nil, m.fail(err, "")
	}
	if patch.IsEmpty() {
		return nil, m.fail(domain.ErrEmptyPatch, "")
	}

	task, err := m.store.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, m.fail(err, "Failed to update task")
	}

	m.mu.Lock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i] = *task
			break
		}
	}
	m.mu.Unlock()
	return task, nil
}

func (m *TaskManager) Delete(ctx context.Context, id string) error {
	if !signedIn(m.users) {
		return m.fail(domain.ErrUnauthenticated, "")
	}
	if err := m.store.DeleteTask(ctx, id); err != nil {
		return m.fail(err, "Failed to delete task")
	}

	m.mu.Lock()
	kept := m.tasks[:0:0]
	for _, t := range m.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m.tasks = kept
	m.mu.Unlock()
	return nil
}

// Tasks returns a snapshot of the local list.
func (m *TaskManager) Tasks() []domain.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

func (m *TaskManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Err is the message of the most recent failure. Successes leave it as is.
func (m *TaskManager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

func (m *TaskManager) ClearError() {
	m.mu.Lock()
	m.errMsg = ""
	m.mu.Unlock()
}

func (m *TaskManager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

// fail records the surfaced message and hands err back to the caller.
func (m *TaskManager) fail(err error, fallback string) error {
	msg := messageOf(err, fallback)
	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
	m.logger.Debug("task operation failed", zap.String("message", msg), zap.Error(err))
	return err
}
