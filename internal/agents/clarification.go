package agents

import (
	"context"
	"fmt"
	"strings"

	einoschema "github.com/cloudwego/eino/schema"

	"clarion/internal/llm"
	"clarion/internal/schema"
	"clarion/prompts"
)

// ClarificationAgent composes the messages that ask the user for missing
// information. Its output is a single ClarificationMessage naming the store
// key the eventual answer is recorded under.
type ClarificationAgent struct {
	BaseAgent
	systemPrompt string
	promptFn     func() (string, error)
}

// NewClarificationAgent creates a clarification agent with the default
// system prompt.
func NewClarificationAgent(cfg llm.Config) *ClarificationAgent {
	return &ClarificationAgent{
		BaseAgent: NewBaseAgent(
			"clarification",
			"Composes user-facing questions for missing information",
			cfg,
		),
		systemPrompt: prompts.ClarificationSystemPrompt,
	}
}

// SetPromptSource registers a callback consulted on every run, so edits to
// prompt override files reach sessions already in flight.
func (a *ClarificationAgent) SetPromptSource(fn func() (string, error)) {
	a.promptFn = fn
}

// currentPrompt returns the system prompt for the next run. A failing or
// empty prompt source falls back to the default.
func (a *ClarificationAgent) currentPrompt() string {
	if a.promptFn != nil {
		if content, err := a.promptFn(); err == nil && strings.TrimSpace(content) != "" {
			return content
		}
	}
	return a.systemPrompt
}

// Run asks the model for the next clarification message. Parse and schema
// failures are reported through Output.Error with the raw response kept, so
// the orchestrator can retry the round.
func (a *ClarificationAgent) Run(ctx context.Context, input Input) (Output, error) {
	if strings.TrimSpace(input.Query) == "" {
		return Output{}, fmt.Errorf("missing query in input")
	}

	messages := []*einoschema.Message{
		einoschema.SystemMessage(a.currentPrompt()),
		einoschema.UserMessage(buildClarificationPrompt(input)),
	}

	content, duration, err := a.GenerateWithTiming(ctx, messages)
	if err != nil {
		return Output{}, err
	}

	msg, err := decodeClarification(content)
	if err != nil {
		return Output{
			AgentName: a.Name(),
			RawOutput: content,
			Duration:  duration,
			Error:     err,
		}, nil
	}

	return Output{
		AgentName: a.Name(),
		Message:   msg,
		Warnings:  msg.Lint(input.Query),
		RawOutput: content,
		Duration:  duration,
	}, nil
}

// buildClarificationPrompt renders the user message: the original query, the
// answer store snapshot, and the transcript of earlier rounds.
func buildClarificationPrompt(input Input) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "User query: %s\n", strings.TrimSpace(input.Query))

	if len(input.Globals) > 0 {
		sb.WriteString("\nGlobal answer store:\n")
		for _, e := range input.Globals {
			switch {
			case e.Answered():
				fmt.Fprintf(&sb, "- %s = %q (answered)\n", e.Key, e.Answer)
			case e.Description != "":
				fmt.Fprintf(&sb, "- %s: %s (pending)\n", e.Key, e.Description)
			default:
				fmt.Fprintf(&sb, "- %s (pending)\n", e.Key)
			}
		}
	} else {
		sb.WriteString("\nGlobal answer store: empty\n")
	}

	if strings.TrimSpace(input.History) != "" {
		fmt.Fprintf(&sb, "\nPrevious clarifications:\n%s\n", input.History)
	}

	return sb.String()
}

// decodeClarification parses and validates a model response into a
// ClarificationMessage.
func decodeClarification(content string) (*schema.ClarificationMessage, error) {
	msg, err := ParseJSONResponse[schema.ClarificationMessage](content)
	if err != nil {
		return nil, fmt.Errorf("parse output: %w", err)
	}

	msg.Normalize()
	if result := msg.Validate(); !result.Valid {
		return nil, fmt.Errorf("invalid output: %s", result.ErrorSummary())
	}
	return &msg, nil
}

func init() {
	RegisterAgentFactory("clarification", func(cfg llm.Config) Agent {
		return NewClarificationAgent(cfg)
	})
}
