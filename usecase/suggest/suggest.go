package suggest

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
)

const DefaultLimit = 5

// Generator proposes subtask titles for a task title.
type Generator interface {
	Generate(ctx context.Context, taskTitle string, limit int) ([]string, error)
}

type UseCase struct {
	generator Generator
	limit     int
	logger    *zap.Logger
}

func New(generator Generator, limit int, logger *zap.Logger) *UseCase {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{generator: generator, limit: limit, logger: logger}
}

// SuggestSubtasks returns at most limit distinct, non-empty titles.
func (uc *UseCase) SuggestSubtasks(ctx context.Context, taskTitle string) ([]string, error) {
	taskTitle = strings.TrimSpace(taskTitle)
	if taskTitle == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "taskTitle is required")
	}
	if uc.generator == nil {
		return nil, domain.NewError(domain.ErrCodeInternal, "subtask generation is not configured")
	}

	raw, err := uc.generator.Generate(ctx, taskTitle, uc.limit)
	if err != nil {
		uc.logger.Error("subtask generation failed", zap.String("task_title", taskTitle), zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "Failed to generate subtasks", err)
	}

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, title := range raw {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, title)
		if len(out) == uc.limit {
			break
		}
	}
	return out, nil
}
