// Package memory keeps every repository in process memory. It backs the
// "memory" storage driver for local development and the package tests.
package memory

import (
	"sync"
	"time"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

type taskRow struct {
	task domain.Task
	seq  uint64
}

// Store holds all tables behind one lock so cross-table rules (parent
// ownership, cascading deletes) stay consistent.
type Store struct {
	mu sync.RWMutex

	users    map[string]domain.User
	emails   map[string]string
	tasks    map[string]taskRow
	subtasks map[string]domain.Subtask
	sessions map[string]domain.Session

	seq  uint64
	last time.Time
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		emails:   make(map[string]string),
		tasks:    make(map[string]taskRow),
		subtasks: make(map[string]domain.Subtask),
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

func (s *Store) Tasks() repository.TaskRepository       { return &taskRepository{s} }
func (s *Store) Subtasks() repository.SubtaskRepository { return &subtaskRepository{s} }
func (s *Store) Users() repository.UserRepository       { return &userRepository{s} }
func (s *Store) Sessions() repository.SessionRepository { return &sessionRepository{s} }

// tick returns a timestamp strictly after the previous one. Callers hold mu.
func (s *Store) tick() time.Time {
	now := s.now()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}
