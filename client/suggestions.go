package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// SuggestionClient fetches generated subtask titles for one task and commits
// chosen ones through a SubtaskManager.
type SuggestionClient struct {
	suggester Suggester
	users     UserSource
	subtasks  *SubtaskManager
	logger    *zap.Logger

	mu          sync.RWMutex
	suggestions []string
	busy        map[string]struct{}
	loading     bool
	errMsg      string
}

func NewSuggestionClient(suggester Suggester, users UserSource, subtasks *SubtaskManager, logger *zap.Logger) *SuggestionClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionClient{
		suggester: suggester,
		users:     users,
		subtasks:  subtasks,
		logger:    logger,
		busy:      make(map[string]struct{}),
	}
}

// Generate replaces the suggestions for taskTitle. Signed out it does nothing.
func (c *SuggestionClient) Generate(ctx context.Context, taskTitle string) error {
	if !signedIn(c.users) {
		return nil
	}

	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.suggestions = nil
	c.mu.Unlock()

	list, err := c.suggester.GenerateSubtasks(ctx, taskTitle)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.errMsg = messageOf(err, "Failed to generate subtasks")
		return err
	}
	c.suggestions = append([]string(nil), list...)
	return nil
}

// Commit adds text as a subtask of the manager's parent. It is removed from
// the suggestions on success and kept otherwise.
func (c *SuggestionClient) Commit(ctx context.Context, text string) error {
	c.mu.Lock()
	c.busy[text] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.busy, text)
		c.mu.Unlock()
	}()

	if _, err := c.subtasks.Add(ctx, c.subtasks.ParentTaskID(), text); err != nil {
		c.logger.Warn("failed to save suggested subtask", zap.String("title", text), zap.Error(err))
		return err
	}

	c.mu.Lock()
	kept := c.suggestions[:0:0]
	for _, s := range c.suggestions {
		if s != text {
			kept = append(kept, s)
		}
	}
	c.suggestions = kept
	c.mu.Unlock()
	return nil
}

func (c *SuggestionClient) Suggestions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.suggestions...)
}

// Busy reports whether a commit of text is in flight.
func (c *SuggestionClient) Busy(text string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.busy[text]
	return ok
}

func (c *SuggestionClient) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *SuggestionClient) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}
