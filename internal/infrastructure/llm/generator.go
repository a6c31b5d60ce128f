package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fastygo/taskmanager/internal/config"
)

const promptTemplate = `You break tasks down into concrete, actionable subtasks.
Task: %q
Reply with a JSON object of the form {"subtasks": ["...", "..."]} containing at most %d short subtask titles in the order they should be done. Do not add any other keys.`

// Generator asks a chat model for subtask titles.
type Generator struct {
	model       llms.Model
	temperature float64
}

// New builds an OpenAI-compatible model forced into JSON output.
func New(cfg config.LLMConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("LLM_API_KEY not set")
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithResponseFormat(&openai.ResponseFormat{Type: "json_object"}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	return NewWithModel(model, cfg.Temperature), nil
}

func NewWithModel(model llms.Model, temperature float64) *Generator {
	return &Generator{model: model, temperature: temperature}
}

func (g *Generator) Generate(ctx context.Context, taskTitle string, limit int) ([]string, error) {
	prompt := fmt.Sprintf(promptTemplate, taskTitle, limit)
	completion, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		return nil, err
	}
	return parseSuggestions(completion)
}

// parseSuggestions accepts {"subtasks": [...]}, a bare JSON array, or either
// of those wrapped in a markdown code fence.
func parseSuggestions(completion string) ([]string, error) {
	body := strings.TrimSpace(completion)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var wrapped struct {
		Subtasks []string `json:"subtasks"`
	}
	if err := json.Unmarshal([]byte(body), &wrapped); err == nil && wrapped.Subtasks != nil {
		return wrapped.Subtasks, nil
	}

	var list []string
	if err := json.Unmarshal([]byte(body), &list); err == nil {
		return list, nil
	}
	return nil, fmt.Errorf("unexpected model output: %.80q", completion)
}
