package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"clarion/internal/llm"
	"clarion/internal/utils"
)

// BaseAgent provides shared functionality for all LLM-powered agents.
// Embed this struct in your agent to get common methods for free.
type BaseAgent struct {
	name        string
	description string
	llmConfig   llm.Config
}

// NewBaseAgent creates a new BaseAgent with the given configuration.
func NewBaseAgent(name, description string, cfg llm.Config) BaseAgent {
	return BaseAgent{
		name:        name,
		description: description,
		llmConfig:   cfg,
	}
}

// Name returns the agent identifier.
func (b *BaseAgent) Name() string { return b.name }

// Description returns the agent description.
func (b *BaseAgent) Description() string { return b.description }

// LLMConfig returns the LLM configuration for this agent.
func (b *BaseAgent) LLMConfig() llm.Config { return b.llmConfig }

// CreateChatModel creates an LLM chat model using the agent's config.
func (b *BaseAgent) CreateChatModel(ctx context.Context) (model.BaseChatModel, error) {
	chatModel, err := llm.NewChatModel(ctx, b.llmConfig)
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	return chatModel, nil
}

// Generate sends messages to the LLM and returns the response content.
func (b *BaseAgent) Generate(ctx context.Context, messages []*einoschema.Message) (string, error) {
	chatModel, err := b.CreateChatModel(ctx)
	if err != nil {
		return "", err
	}

	resp, err := chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}

	return resp.Content, nil
}

// GenerateWithTiming sends messages and returns content with duration.
func (b *BaseAgent) GenerateWithTiming(ctx context.Context, messages []*einoschema.Message) (string, time.Duration, error) {
	start := time.Now()
	content, err := b.Generate(ctx, messages)
	return content, time.Since(start), err
}

// ParseJSONResponse extracts JSON from an LLM response, tolerating markdown
// fences, surrounding prose, and common syntax slips.
func ParseJSONResponse[T any](response string) (T, error) {
	return utils.ExtractAndParseJSON[T](response)
}
