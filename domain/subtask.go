package domain

import (
	"strings"
	"time"
)

// Subtask is an ordered step belonging to exactly one parent task.
type Subtask struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ParentTaskID string    `json:"parent_task_id"`
	UserID       string    `json:"user_id"`
	Status       Status    `json:"status"`
	OrderIndex   int       `json:"order_index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSubtask returns a pending subtask. The order index is assigned by the store.
func NewSubtask(userID, parentTaskID, title string) (*Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if parentTaskID == "" {
		return nil, ErrParentRequired
	}
	return &Subtask{
		Title:        title,
		ParentTaskID: parentTaskID,
		UserID:       userID,
		Status:       StatusPending,
	}, nil
}

func (s *Subtask) Touch() {
	if s == nil {
		return
	}
	s.UpdatedAt = time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
}

// NextStatus is the status a checkbox toggle moves to.
func (s *Subtask) NextStatus() Status {
	if s != nil && s.Status == StatusDone {
		return StatusPending
	}
	return StatusDone
}

// NextOrderIndex returns max(order_index)+1 over siblings, or 0 when there are none.
func NextOrderIndex(siblings []Subtask) int {
	next := 0
	for _, s := range siblings {
		if s.OrderIndex+1 > next {
			next = s.OrderIndex + 1
		}
	}
	return next
}

// SubtaskPatch carries a partial update of title and status.
type SubtaskPatch struct {
	Title  *string `json:"title,omitempty"`
	Status *Status `json:"status,omitempty"`
}

func (p *SubtaskPatch) Normalize() error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return ErrTitleRequired
		}
		p.Title = &title
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (p SubtaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Status == nil
}

func (p SubtaskPatch) Apply(s *Subtask) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	s.UpdatedAt = time.Now()
}
