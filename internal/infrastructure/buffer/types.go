package buffer

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	EntityProfile = "profile"
	EntityTask    = "task"
	EntitySubtask = "subtask"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Lower values drain first.
const (
	PriorityHigh    = 1
	PriorityDefault = 3
)

var errInvalidItem = errors.New("buffer item requires entity and operation")

// Item represents an operation that should be retried when primary storage is unavailable.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() error {
	if i.Entity == "" || i.Operation == "" {
		return errInvalidItem
	}
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = PriorityDefault
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
	return nil
}
