package client

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fastygo/taskmanager/domain"
)

type staticUser struct{ user *domain.User }

func (s staticUser) User() *domain.User { return s.user }

var (
	alice     = staticUser{user: &domain.User{ID: "alice", Email: "alice@example.com"}}
	signedOut = staticUser{}
)

// fakeStore is an in-process Store. Failing hooks return their error
// before the store is touched.
type fakeStore struct {
	mu       sync.Mutex
	seq      int
	tasks    []domain.Task
	subtasks map[string]*domain.Subtask
	calls    map[string]int
	orders   map[string]int

	failInsertTask    error
	failUpdateSubtask error
	failInsertSubtask map[string]error
	failOrder         map[string]error
	failList          error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subtasks: make(map[string]*domain.Subtask),
		calls:    make(map[string]int),
		orders:   make(map[string]int),
	}
}

func (f *fakeStore) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStore) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) ListTasks(context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListTasks"]++
	if f.failList != nil {
		return nil, f.failList
	}
	return append([]domain.Task(nil), f.tasks...), nil
}

func (f *fakeStore) InsertTask(_ context.Context, title string, priority domain.Priority) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["InsertTask"]++
	if f.failInsertTask != nil {
		return nil, f.failInsertTask
	}
	task := domain.Task{ID: f.nextID("task"), UserID: "alice", Title: title, Priority: priority, Status: domain.StatusPending}
	f.tasks = append([]domain.Task{task}, f.tasks...)
	return &task, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateTask"]++
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			patch.Apply(&f.tasks[i])
			task := f.tasks[i]
			return &task, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (f *fakeStore) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteTask"]++
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (f *fakeStore) ListSubtasks(_ context.Context, parentTaskID string) ([]domain.Subtask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListSubtasks"]++
	if f.failList != nil {
		return nil, f.failList
	}
	return f.siblings(parentTaskID), nil
}

func (f *fakeStore) siblings(parentTaskID string) []domain.Subtask {
	var out []domain.Subtask
	for _, s := range f.subtasks {
		if s.ParentTaskID == parentTaskID {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex == out[j].OrderIndex {
			return out[i].ID < out[j].ID
		}
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}

// seed stores a subtask with an explicit id and index.
func (f *fakeStore) seed(id, parentTaskID, title string, index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subtasks[id] = &domain.Subtask{ID: id, ParentTaskID: parentTaskID, UserID: "alice", Title: title, Status: domain.StatusPending, OrderIndex: index}
}

func (f *fakeStore) InsertSubtask(_ context.Context, parentTaskID, title string) (*domain.Subtask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["InsertSubtask"]++
	if err := f.failInsertSubtask[title]; err != nil {
		return nil, err
	}
	subtask := &domain.Subtask{
		ID:           f.nextID("sub"),
		ParentTaskID: parentTaskID,
		UserID:       "alice",
		Title:        title,
		Status:       domain.StatusPending,
		OrderIndex:   domain.NextOrderIndex(f.siblings(parentTaskID)),
	}
	f.subtasks[subtask.ID] = subtask
	out := *subtask
	return &out, nil
}

func (f *fakeStore) UpdateSubtask(_ context.Context, id string, patch domain.SubtaskPatch) (*domain.Subtask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateSubtask"]++
	if f.failUpdateSubtask != nil {
		return nil, f.failUpdateSubtask
	}
	s, ok := f.subtasks[id]
	if !ok {
		return nil, domain.ErrSubtaskNotFound
	}
	patch.Apply(s)
	out := *s
	return &out, nil
}

func (f *fakeStore) SetSubtaskOrder(_ context.Context, id string, index int) (*domain.Subtask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SetSubtaskOrder"]++
	if err := f.failOrder[id]; err != nil {
		return nil, err
	}
	s, ok := f.subtasks[id]
	if !ok {
		return nil, domain.ErrSubtaskNotFound
	}
	s.OrderIndex = index
	f.orders[id] = index
	out := *s
	return &out, nil
}

func (f *fakeStore) DeleteSubtask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteSubtask"]++
	if _, ok := f.subtasks[id]; !ok {
		return domain.ErrSubtaskNotFound
	}
	delete(f.subtasks, id)
	return nil
}

// batchStore adds the atomic reorder path on top of fakeStore.
type batchStore struct {
	*fakeStore
}

func (b batchStore) ReorderSubtasks(_ context.Context, parentTaskID string, orderedIDs []string) ([]domain.Subtask, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["ReorderSubtasks"]++
	for i, id := range orderedIDs {
		b.subtasks[id].OrderIndex = i
	}
	return b.siblings(parentTaskID), nil
}

type suggesterFunc func(ctx context.Context, title string) ([]string, error)

func (f suggesterFunc) GenerateSubtasks(ctx context.Context, title string) ([]string, error) {
	return f(ctx, title)
}
