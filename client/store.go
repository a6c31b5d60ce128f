// Package client is the data-synchronization layer between a front end and
// the taskmanager API. Managers keep an in-memory copy of the caller's rows
// and patch it from the fresh row every successful mutation returns.
package client

import (
	"context"
	"errors"

	"github.com/fastygo/taskmanager/domain"
)

// Store is the remote side the managers talk to. Owner scoping is applied by
// the server from the bearer token, so no method takes a user id.
type Store interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	InsertTask(ctx context.Context, title string, priority domain.Priority) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error

	ListSubtasks(ctx context.Context, parentTaskID string) ([]domain.Subtask, error)
	InsertSubtask(ctx context.Context, parentTaskID, title string) (*domain.Subtask, error)
	UpdateSubtask(ctx context.Context, id string, patch domain.SubtaskPatch) (*domain.Subtask, error)
	SetSubtaskOrder(ctx context.Context, id string, index int) (*domain.Subtask, error)
	DeleteSubtask(ctx context.Context, id string) error
}

// BatchReorderer is implemented by stores that can reassign every sibling's
// order in one transaction. The returned slice is ordered by order_index.
type BatchReorderer interface {
	ReorderSubtasks(ctx context.Context, parentTaskID string, orderedIDs []string) ([]domain.Subtask, error)
}

// Suggester calls the subtask generation function.
type Suggester interface {
	GenerateSubtasks(ctx context.Context, taskTitle string) ([]string, error)
}

// Credentials is what a sign-in returns.
type Credentials struct {
	Token   string          `json:"access_token"`
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
}

// Authenticator is the account side of the API.
type Authenticator interface {
	SignUp(ctx context.Context, email, password, name string) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*Credentials, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// UserSource yields the signed-in user, or nil.
type UserSource interface {
	User() *domain.User
}

// TokenSource yields the bearer token for outgoing requests.
type TokenSource interface {
	Token() string
}

// messageOf picks the text recorded in a manager's error field: the message
// of a domain error, otherwise fallback.
func messageOf(err error, fallback string) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return fallback
}

func signedIn(users UserSource) bool {
	return users != nil && users.User() != nil
}
