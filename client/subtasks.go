package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/taskmanager/domain"
)

var ErrSubtaskNotLoaded = domain.NewError(domain.ErrCodeNotFound, "subtask is not in the list")

// SubtaskManager keeps the subtasks of one parent task.
type SubtaskManager struct {
	store        Store
	users        UserSource
	parentTaskID string
	logger       *zap.Logger

	mu       sync.RWMutex
	subtasks []domain.Subtask
	loading  bool
	errMsg   string
}

func NewSubtaskManager(store Store, users UserSource, parentTaskID string, logger *zap.Logger) *SubtaskManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubtaskManager{
		store:        store,
		users:        users,
		parentTaskID: parentTaskID,
		logger:       logger,
	}
}

func (m *SubtaskManager) ParentTaskID() string { return m.parentTaskID }

// Load fetches the siblings ordered by order_index.
func (m *SubtaskManager) Load(ctx context.Context) error {
	if !signedIn(m.users) || m.parentTaskID == "" {
		m.mu.Lock()
		m.subtasks = nil
		m.mu.Unlock()
		return nil
	}

	m.setLoading(true)
	defer m.setLoading(false)

	subtasks, err := m.store.ListSubtasks(ctx, m.parentTaskID)
	if err != nil {
		return m.fail(err, "An error occurred")
	}

	m.mu.Lock()
	m.subtasks = subtasks
	m.mu.Unlock()
	return nil
}

// Add creates a pending subtask at the end of its parent. The server picks
// the order index. The row is appended locally only when it belongs to this
// manager's parent.
func (m *SubtaskManager) Add(ctx context.Context, parentTaskID, title string) (*domain.Subtask, error) {
	if !signedIn(m.users) {
		return nil, m.fail(domain.ErrUnauthenticated, "")
	}
	if parentTaskID == "" {
		parentTaskID = m.parentTaskID
	}
	if parentTaskID == "" {
		return nil, m.fail(domain.ErrParentRequired, "")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, m.fail(domain.ErrTitleRequired, "")
	}

	subtask, err := m.store.InsertSubtask(ctx, parentTaskID, title)
	if err != nil {
		return nil, m.fail(err, "Failed to add subtask")
	}

	if subtask.ParentTaskID == m.parentTaskID {
		m.mu.Lock()
		m.subtasks = append(m.subtasks, *subtask)
		m.mu.Unlock()
	}
	return subtask, nil
}

func (m *SubtaskManager) Update(ctx context.Context, id string, patch domain.SubtaskPatch) (*domain.Subtask, error) {
	if !signedIn(m.users) {
		return nil, m.fail(domain.ErrUnauthenticated, "")
	}
	if err := patch.Normalize(); err != nil {
		return nil, m.fail(err, "")
	}
	if patch.IsEmpty() {
		return nil, m.fail(domain.ErrEmptyPatch, "")
	}

	subtask, err := m.store.UpdateSubtask(ctx, id, patch)
	if err != nil {
		return nil, m.fail(err, "Failed to update subtask")
	}
	m.replace(*subtask)
	return subtask, nil
}

// ToggleStatus flips done to pending and anything else to done.
func (m *SubtaskManager) ToggleStatus(ctx context.Context, id string) (*domain.Subtask, error) {
	current, ok := m.find(id)
	if !ok {
		return nil, m.fail(ErrSubtaskNotLoaded, "")
	}
	next := current.NextStatus()
	return m.Update(ctx, id, domain.SubtaskPatch{Status: &next})
}

// Reorder sets one subtask's index. Siblings are not renumbered.
func (m *SubtaskManager) Reorder(ctx context.Context, id string, index int) (*domain.Subtask, error) {
	if !signedIn(m.users) {
		return nil, m.fail(domain.ErrUnauthenticated, "")
	}
	if index < 0 {
		return nil, m.fail(domain.ErrInvalidOrder, "")
	}

	subtask, err := m.store.SetSubtaskOrder(ctx, id, index)
	if err != nil {
		return nil, m.fail(err, "Failed to update subtask order")
	}
	m.replace(*subtask)
	return subtask, nil
}

func (m *SubtaskManager) Delete(ctx context.Context, id string) error {
	if !signedIn(m.users) {
		return m.fail(domain.ErrUnauthenticated, "")
	}
	if err := m.store.DeleteSubtask(ctx, id); err != nil {
		return m.fail(err, "Failed to delete subtask")
	}

	m.mu.Lock()
	kept := m.subtasks[:0:0]
	for _, s := range m.subtasks {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.subtasks = kept
	m.mu.Unlock()
	return nil
}

// Move drops draggedID onto targetID's position and renumbers every sibling
// 0..n-1 in the resulting order. Stores implementing BatchReorderer, such as
// HTTPClient, apply the whole order in one atomic call. Only stores without
// batch support get one SetSubtaskOrder call per sibling, issued concurrently;
// calls that succeed stay applied when others fail.
func (m *SubtaskManager) Move(ctx context.Context, draggedID, targetID string) error {
	if !signedIn(m.users) {
		return m.fail(domain.ErrUnauthenticated, "")
	}
	if draggedID == targetID {
		return nil
	}

	ids, err := m.spliced(draggedID, targetID)
	if err != nil {
		return m.fail(err, "")
	}

	if batch, ok := m.store.(BatchReorderer); ok {
		ordered, err := batch.ReorderSubtasks(ctx, m.parentTaskID, ids)
		if err != nil {
			return m.fail(err, "Failed to update subtask order")
		}
		m.mu.Lock()
		m.subtasks = ordered
		m.mu.Unlock()
		return nil
	}

	var (
		g       errgroup.Group
		errMu   sync.Mutex
		joined  error
		firstID string
	)
	for i, id := range ids {
		g.Go(func() error {
			subtask, err := m.store.SetSubtaskOrder(ctx, id, i)
			if err != nil {
				errMu.Lock()
				if joined == nil {
					firstID = id
				}
				joined = errors.Join(joined, fmt.Errorf("subtask %s: %w", id, err))
				errMu.Unlock()
				return nil
			}
			m.replace(*subtask)
			return nil
		})
	}
	_ = g.Wait()

	m.sortLocal()
	if joined != nil {
		m.logger.Warn("subtask reorder partially failed", zap.String("first_failed_id", firstID), zap.Error(joined))
		return m.fail(joined, "Failed to update subtask order")
	}
	return nil
}

func (m *SubtaskManager) Subtasks() []domain.Subtask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Subtask, len(m.subtasks))
	copy(out, m.subtasks)
	return out
}

func (m *SubtaskManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Err is the message of the most recent failure. Successes leave it as is.
func (m *SubtaskManager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

func (m *SubtaskManager) ClearError() {
	m.mu.Lock()
	m.errMsg = ""
	m.mu.Unlock()
}

// spliced returns the local ids with draggedID removed and reinserted at
// targetID's former position.
func (m *SubtaskManager) spliced(draggedID, targetID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, to := -1, -1
	ids := make([]string, 0, len(m.subtasks))
	for i, s := range m.subtasks {
		ids = append(ids, s.ID)
		switch s.ID {
		case draggedID:
			from = i
		case targetID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return nil, ErrSubtaskNotLoaded
	}

	dragged := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]string{dragged}, ids[to:]...)...)
	return ids, nil
}

func (m *SubtaskManager) find(id string) (domain.Subtask, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subtasks {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Subtask{}, false
}

func (m *SubtaskManager) replace(subtask domain.Subtask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subtasks {
		if m.subtasks[i].ID == subtask.ID {
			m.subtasks[i] = subtask
			return
		}
	}
}

// sortLocal orders the list by order_index, keeping ties stable.
func (m *SubtaskManager) sortLocal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	sort.SliceStable(m.subtasks, func(i, j int) bool {
		return m.subtasks[i].OrderIndex < m.subtasks[j].OrderIndex
	})
}

func (m *SubtaskManager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

func (m *SubtaskManager) fail(err error, fallback string) error {
	msg := messageOf(err, fallback)
	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
	m.logger.Debug("subtask operation failed", zap.String("message", msg), zap.Error(err))
	return err
}
