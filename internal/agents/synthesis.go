package agents

import (
	"context"
	"fmt"
	"strings"

	einoschema "github.com/cloudwego/eino/schema"

	"clarion/internal/llm"
	"clarion/prompts"
)

// SynthesisAgent condenses a free-form user reply into a concise value for
// the global answer store. Option picks bypass it; only free-form answers
// need normalization.
type SynthesisAgent struct {
	BaseAgent
	systemPrompt string
	promptFn     func() (string, error)
}

// synthesisOutput is the structured response from the LLM.
type synthesisOutput struct {
	Value string `json:"value"`
}

// NewSynthesisAgent creates an agent for answer normalization.
func NewSynthesisAgent(cfg llm.Config) *SynthesisAgent {
	return &SynthesisAgent{
		BaseAgent: NewBaseAgent(
			"synthesis",
			"Normalizes free-form replies into store values",
			cfg,
		),
		systemPrompt: prompts.AnswerSynthesisSystemPrompt,
	}
}

// SetPromptSource registers a callback consulted on every normalization,
// so prompt override edits apply without a restart.
func (a *SynthesisAgent) SetPromptSource(fn func() (string, error)) {
	a.promptFn = fn
}

func (a *SynthesisAgent) currentPrompt() string {
	if a.promptFn != nil {
		if content, err := a.promptFn(); err == nil && strings.TrimSpace(content) != "" {
			return content
		}
	}
	return a.systemPrompt
}

// Normalize condenses a raw reply to the given question into a store value.
// On any failure the raw reply is returned unchanged; normalization is an
// improvement, never a gate.
func (a *SynthesisAgent) Normalize(ctx context.Context, question, reply string) string {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return reply
	}

	userPrompt := fmt.Sprintf("Question: %s\nReply: %s\n", question, reply)
	messages := []*einoschema.Message{
		einoschema.SystemMessage(a.currentPrompt()),
		einoschema.UserMessage(userPrompt),
	}

	content, err := a.Generate(ctx, messages)
	if err != nil {
		return reply
	}

	parsed, err := ParseJSONResponse[synthesisOutput](content)
	if err != nil || strings.TrimSpace(parsed.Value) == "" {
		return reply
	}
	return strings.TrimSpace(parsed.Value)
}

// Run executes normalization through the generic agent interface.
// Input.ExistingContext should contain:
// - "question": string (the clarification question that was asked)
// - "reply": string (the user's free-form reply)
func (a *SynthesisAgent) Run(ctx context.Context, input Input) (Output, error) {
	question, _ := input.ExistingContext["question"].(string)
	reply, ok := input.ExistingContext["reply"].(string)
	if !ok || strings.TrimSpace(reply) == "" {
		return Output{}, fmt.Errorf("missing 'reply' in input context")
	}

	return Output{
		AgentName: a.Name(),
		Value:     a.Normalize(ctx, question, reply),
	}, nil
}

func init() {
	RegisterAgentFactory("synthesis", func(cfg llm.Config) Agent {
		return NewSynthesisAgent(cfg)
	})
}
