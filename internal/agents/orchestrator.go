package agents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"clarion/internal/globals"
	"clarion/internal/schema"
	"clarion/internal/telemetry"
)

// ErrStopSession is returned by an AnswerFunc to end the session early
// without treating it as a failure.
var ErrStopSession = errors.New("session stopped by user")

// maxParseRetries bounds consecutive rounds lost to unusable model output.
const maxParseRetries = 2

// AnswerFunc obtains the user's answer to a clarification message. It is
// how the orchestrator stays independent of the presentation layer: the CLI
// passes an interactive prompt, tests pass a scripted function.
type AnswerFunc func(ctx context.Context, msg *schema.ClarificationMessage) (string, error)

// Normalizer condenses free-form replies into store values.
type Normalizer interface {
	Normalize(ctx context.Context, question, reply string) string
}

// Round records one completed clarification exchange.
type Round struct {
	// Message is the clarification message that was produced.
	Message schema.ClarificationMessage

	// Answer is the value recorded in the store.
	Answer string

	// Resolved means the store already held the answer and the user was
	// not asked.
	Resolved bool

	// MatchedKey is the store key that resolved the round. For resolved
	// rounds it may differ from Message.WritesTo.
	MatchedKey string

	// Warnings are conduct-rule violations surfaced for this round.
	Warnings []string
}

// SessionResult summarizes a clarification session.
type SessionResult struct {
	SessionID     string
	Query         string
	Rounds        []Round
	ParseFailures int

	// Stopped means the user ended the session before the round budget
	// was reached.
	Stopped bool
}

// Options configures an Orchestrator.
type Options struct {
	// MaxRounds caps the number of questions per session. Zero selects
	// the default of 5.
	MaxRounds int

	// Synthesizer normalizes free-form replies before they are recorded.
	// Nil records replies verbatim.
	Synthesizer Normalizer

	// Telemetry receives anonymous session events. Nil disables them.
	Telemetry telemetry.Client

	// Log receives verbose progress output. Nil discards it.
	Log io.Writer
}

// DefaultMaxRounds is the session round budget when none is configured.
const DefaultMaxRounds = 5

// Orchestrator drives the clarification loop: run the agent, resolve the
// proposed question against the store, ask the user when it is genuinely
// new, and record the answer under the message's writes_to key.
type Orchestrator struct {
	agent     Agent
	store     globals.Store
	resolver  *globals.Resolver
	synth     Normalizer
	telemetry telemetry.Client
	maxRounds int
	log       io.Writer
}

// NewOrchestrator creates an orchestrator over the given agent and store.
func NewOrchestrator(agent Agent, store globals.Store, resolver *globals.Resolver, opts Options) *Orchestrator {
	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.NewNoopClient()
	}
	log := opts.Log
	if log == nil {
		log = io.Discard
	}
	return &Orchestrator{
		agent:     agent,
		store:     store,
		resolver:  resolver,
		synth:     opts.Synthesizer,
		telemetry: tel,
		maxRounds: maxRounds,
		log:       log,
	}
}

// Run executes a clarification session for the query. The session ends when
// the round budget is exhausted, the agent targets a key the store already
// answers, or answer returns ErrStopSession.
func (o *Orchestrator) Run(ctx context.Context, query string, answer AnswerFunc) (*SessionResult, error) {
	result := &SessionResult{
		SessionID: uuid.New().String(),
		Query:     query,
	}
	o.telemetry.Track(telemetry.EventSessionStart, telemetry.Properties{
		"session_id": result.SessionID,
		"max_rounds": o.maxRounds,
	})

	var history strings.Builder
	retries := 0

	for round := 1; round <= o.maxRounds; round++ {
		snapshot, err := o.store.List()
		if err != nil {
			return result, fmt.Errorf("snapshot store: %w", err)
		}

		out, err := o.agent.Run(ctx, Input{
			Query:   query,
			History: history.String(),
			Globals: snapshot,
		})
		if err != nil {
			return result, fmt.Errorf("clarification round %d: %w", round, err)
		}

		if out.Error != nil || out.Message == nil {
			parseErr := out.Error
			if parseErr == nil {
				parseErr = errors.New("agent returned no message")
			}
			result.ParseFailures++
			o.telemetry.Track(telemetry.EventParseError, telemetry.Properties{
				"session_id": result.SessionID,
				"round":      round,
			})
			fmt.Fprintf(o.log, "round %d: unusable output: %v\n", round, parseErr)
			retries++
			if retries > maxParseRetries {
				return result, fmt.Errorf("clarification output unusable after %d attempts: %w", retries, parseErr)
			}
			round--
			continue
		}
		retries = 0

		msg := out.Message
		for _, w := range out.Warnings {
			fmt.Fprintf(o.log, "round %d: warning: %s\n", round, w)
		}

		res, err := o.resolver.Resolve(ctx, msg.WritesTo, msg.Message)
		if err != nil {
			return result, fmt.Errorf("resolve %s: %w", msg.WritesTo, err)
		}
		if res.Answered {
			// The agent has nothing new to ask; the session has converged.
			result.Rounds = append(result.Rounds, Round{
				Message:    *msg,
				Answer:     res.Answer,
				Resolved:   true,
				MatchedKey: res.MatchedKey,
				Warnings:   out.Warnings,
			})
			o.telemetry.Track(telemetry.EventRoundResolved, telemetry.Properties{
				"session_id": result.SessionID,
				"round":      round,
			})
			break
		}

		if err := o.store.Upsert(globals.Entry{
			Key:               msg.WritesTo,
			Question:          msg.Message,
			QuestionEmbedding: o.resolver.EmbedQuestion(ctx, msg.Message),
		}); err != nil {
			return result, fmt.Errorf("record pending %s: %w", msg.WritesTo, err)
		}
		o.telemetry.Track(telemetry.EventRoundAsked, telemetry.Properties{
			"session_id": result.SessionID,
			"round":      round,
			"free_form":  msg.FreeForm(),
			"options":    len(msg.Options),
		})

		reply, err := answer(ctx, msg)
		if errors.Is(err, ErrStopSession) {
			result.Stopped = true
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("obtain answer for %s: %w", msg.WritesTo, err)
		}

		value := strings.TrimSpace(reply)
		if msg.FreeForm() && o.synth != nil {
			value = o.synth.Normalize(ctx, msg.Message, value)
		}

		if err := o.store.Answer(msg.WritesTo, value); err != nil {
			return result, fmt.Errorf("record answer for %s: %w", msg.WritesTo, err)
		}
		o.telemetry.Track(telemetry.EventAnswerRecorded, telemetry.Properties{
			"session_id": result.SessionID,
			"round":      round,
		})

		result.Rounds = append(result.Rounds, Round{
			Message:    *msg,
			Answer:     value,
			MatchedKey: msg.WritesTo,
			Warnings:   out.Warnings,
		})
		fmt.Fprintf(&history, "Q (%s): %s\nA: %s\n", msg.WritesTo, msg.Message, value)
	}

	return result, nil
}
