// Package globals manages the shared answer store that clarification agents
// write into. Each entry binds a snake_case key to the question that was
// asked for it and, once the user responds, the recorded answer.
package globals

import "time"

// Status tracks the lifecycle of an entry.
type Status string

const (
	// StatusPending means the key is declared but has no recorded answer yet.
	StatusPending Status = "pending"
	// StatusAnswered means a user answer has been recorded for the key.
	StatusAnswered Status = "answered"
)

// Entry is one key in the global answer store.
type Entry struct {
	// Key is the writes_to target, snake_case ASCII.
	Key string `json:"key"`

	// Description says what the key holds, for the schema snapshot agents see.
	Description string `json:"description,omitempty"`

	// Question is the clarification message that was asked for this key.
	Question string `json:"question,omitempty"`

	// Answer is the recorded user answer. Empty while pending.
	Answer string `json:"answer,omitempty"`

	// Status is pending or answered.
	Status Status `json:"status"`

	// QuestionEmbedding is the embedding of Question, used for re-ask
	// detection. Nil when no embedder is configured.
	QuestionEmbedding []float64 `json:"-"`

	// UpdatedAt is the last modification time.
	UpdatedAt time.Time `json:"updated_at"`
}

// Answered reports whether the entry holds a recorded answer.
func (e *Entry) Answered() bool {
	return e.Status == StatusAnswered
}
