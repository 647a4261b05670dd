// Package schema provides strict schema definitions for LLM-generated
// clarification messages. These schemas enforce structure on model outputs
// to prevent malformed responses from reaching the user.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

// globalKeyRegex matches the key grammar for the global answer store:
// snake_case ASCII starting with a letter.
var globalKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// codeCallRegex flags tool-invocation syntax in user-facing text,
// e.g. search_web("query") or browser.open('url').
var codeCallRegex = regexp.MustCompile(`\b[\w.]+\(\s*["'{]`)

func init() {
	validate = validator.New()

	// Register custom validation for non-empty trimmed strings
	_ = validate.RegisterValidation("nonempty", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Register custom validation for global store keys
	_ = validate.RegisterValidation("global_key", func(fl validator.FieldLevel) bool {
		return globalKeyRegex.MatchString(fl.Field().String())
	})
}

// ClarificationMessage is the wire format a clarification agent must produce.
// The three keys are fixed; the orchestrator and every downstream consumer
// match on these exact names.
type ClarificationMessage struct {
	// Message is the user-facing question or status update.
	Message string `json:"clarificationMessage" validate:"required,nonempty"`

	// Options are selectable answers, in presentation order. Empty means a
	// free-form answer is expected.
	Options []string `json:"options" validate:"omitempty,unique,dive,nonempty"`

	// WritesTo names the key in the global answer store where the user's
	// eventual answer is recorded.
	WritesTo string `json:"writes_to" validate:"required,global_key"`
}

// ValidGlobalKey reports whether s satisfies the store key grammar.
func ValidGlobalKey(s string) bool {
	return globalKeyRegex.MatchString(s)
}

// Normalize prepares the message for marshalling: Options always serializes
// as [] rather than null, and surrounding whitespace is dropped.
func (m *ClarificationMessage) Normalize() {
	m.Message = strings.TrimSpace(m.Message)
	m.WritesTo = strings.TrimSpace(m.WritesTo)
	if m.Options == nil {
		m.Options = []string{}
	}
	for i, opt := range m.Options {
		m.Options[i] = strings.TrimSpace(opt)
	}
}

// FreeForm reports whether the message expects a free-form answer.
func (m *ClarificationMessage) FreeForm() bool {
	return len(m.Options) == 0
}

// Validate checks the message against the schema rules.
func (m *ClarificationMessage) Validate() ValidationResult {
	return validateStruct(m)
}

// Lint converts the conduct rules of the clarification prompt into checkable
// warnings. Violations do not fail validation; the orchestrator logs them and
// may retry the round.
func (m *ClarificationMessage) Lint(query string) []string {
	var warnings []string

	msg := strings.ToLower(strings.TrimSpace(m.Message))
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) > 12 && strings.Contains(msg, q) {
		warnings = append(warnings, "message repeats the original query")
	}
	if strings.Contains(m.Message, "```") {
		warnings = append(warnings, "message contains a code block")
	}
	if codeCallRegex.MatchString(m.Message) {
		warnings = append(warnings, "message contains tool-invocation syntax")
	}
	for _, opt := range m.Options {
		if strings.Contains(opt, "```") || codeCallRegex.MatchString(opt) {
			warnings = append(warnings, fmt.Sprintf("option %q contains code", opt))
		}
	}
	return warnings
}

// ValidationError provides structured error information for schema validation failures
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationResult contains the result of schema validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ErrorSummary returns a single string summarizing all validation errors
func (r ValidationResult) ErrorSummary() string {
	if r.Valid {
		return ""
	}
	var parts []string
	for _, e := range r.Errors {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, "; ")
}

// validateStruct is a helper that validates any struct and returns ValidationResult
func validateStruct(s any) ValidationResult {
	err := validate.Struct(s)
	if err == nil {
		return ValidationResult{Valid: true}
	}

	var errors []ValidationError
	for _, err := range err.(validator.ValidationErrors) {
		errors = append(errors, ValidationError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Value:   err.Value(),
			Message: formatValidationError(err),
		})
	}

	return ValidationResult{Valid: false, Errors: errors}
}

// formatValidationError creates a human-readable error message
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "nonempty":
		return fmt.Sprintf("%s cannot be empty or whitespace", err.Field())
	case "global_key":
		return fmt.Sprintf("%s must be a snake_case key (got %q)", err.Field(), err.Value())
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", err.Field())
	default:
		return fmt.Sprintf("%s failed validation: %s", err.Field(), err.Tag())
	}
}
