package transport

import "github.com/fastygo/taskmanager/domain"

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	TTL int `json:"ttl_seconds"`
}

// ProfileUpdateRequest requires the name key. An empty string clears it.
type ProfileUpdateRequest struct {
	Name *string `json:"name"`
}

type CreateTaskRequest struct {
	Title    string          `json:"title"`
	Priority domain.Priority `json:"priority"`
}

// UpdateTaskRequest is a partial update; omitted fields keep their value.
type UpdateTaskRequest struct {
	Title    *string          `json:"title"`
	Priority *domain.Priority `json:"priority"`
	Status   *domain.Status   `json:"status"`
}

func (r UpdateTaskRequest) Patch() domain.TaskPatch {
	return domain.TaskPatch{Title: r.Title, Priority: r.Priority, Status: r.Status}
}

type CreateSubtaskRequest struct {
	Title string `json:"title"`
}

type UpdateSubtaskRequest struct {
	Title  *string        `json:"title"`
	Status *domain.Status `json:"status"`
}

func (r UpdateSubtaskRequest) Patch() domain.SubtaskPatch {
	return domain.SubtaskPatch{Title: r.Title, Status: r.Status}
}

type SetOrderRequest struct {
	OrderIndex *int `json:"order_index"`
}

// ReorderRequest lists sibling ids in their new display order.
type ReorderRequest struct {
	SubtaskIDs []string `json:"subtask_ids"`
}

// GenerateSubtasksRequest is the body of the generation function call.
type GenerateSubtasksRequest struct {
	TaskTitle string `json:"taskTitle"`
}
