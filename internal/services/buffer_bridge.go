package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/internal/infrastructure/buffer"
	"github.com/fastygo/taskmanager/usecase"
)

// BufferBridge serializes domain writes into buffer items for the processor.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityProfile, operation, "", user.ID, buffer.PriorityDefault, user)
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	// Parent tasks drain ahead of their subtasks.
	return b.enqueue(ctx, buffer.EntityTask, operation, task.ID, task.UserID, buffer.PriorityHigh, task)
}

func (b *BufferBridge) BufferSubtask(ctx context.Context, operation string, subtask *domain.Subtask) error {
	if subtask == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntitySubtask, operation, subtask.ID, subtask.UserID, buffer.PriorityDefault, subtask)
}

func (b *BufferBridge) enqueue(ctx context.Context, entity, operation, id, userID string, priority int, v interface{}) error {
	if b == nil || b.processor == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    userID,
		Entity:    entity,
		Operation: operation,
		Data:      payload,
		Priority:  priority,
	}
	// Item ids must stay unique per operation; the entity id lives in Data.
	if id != "" {
		item.ID = operation + ":" + id
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
