/*
Package agents provides the LLM-powered agents of the clarification
workflow. The clarification agent composes the messages that ask users for
missing information; the synthesis agent condenses free-form replies into
store values. The orchestrator drives the ask/answer loop around them.
*/
package agents

import (
	"context"
	"time"

	"clarion/internal/globals"
	"clarion/internal/schema"
)

// Agent is the interface all LLM-powered agents implement.
type Agent interface {
	// Name returns the unique identifier for this agent.
	Name() string

	// Description returns a human-readable description of what this agent does.
	Description() string

	// Run executes the agent once and returns its output.
	Run(ctx context.Context, input Input) (Output, error)
}

// Input provides the context for an agent run.
type Input struct {
	// Query is the user's original request.
	Query string

	// History is the transcript of earlier clarification rounds.
	History string

	// Globals is a snapshot of the answer store at the start of the round.
	Globals []globals.Entry

	// ExistingContext carries agent-specific parameters.
	ExistingContext map[string]any

	// Verbose enables detailed logging.
	Verbose bool
}

// Output captures the result of an agent run.
type Output struct {
	// AgentName identifies which agent produced this output.
	AgentName string

	// Message is the parsed clarification message, nil when parsing failed.
	Message *schema.ClarificationMessage

	// Value is the synthesized store value, for agents that produce one.
	Value string

	// Warnings are conduct-rule violations that do not invalidate the output.
	Warnings []string

	// RawOutput is the unprocessed LLM response (for debugging).
	RawOutput string

	// Duration is how long the agent took to run.
	Duration time.Duration

	// Error captures non-fatal issues such as unparseable model output.
	// The raw response is preserved so the caller can log or retry.
	Error error
}
