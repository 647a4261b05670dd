package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clarion/internal/globals"
	"clarion/internal/schema"
)

// scriptedAgent replays canned outputs and records the inputs it saw.
type scriptedAgent struct {
	outputs []Output
	inputs  []Input
}

func (s *scriptedAgent) Name() string        { return "scripted" }
func (s *scriptedAgent) Description() string { return "test double" }

func (s *scriptedAgent) Run(_ context.Context, input Input) (Output, error) {
	s.inputs = append(s.inputs, input)
	i := len(s.inputs) - 1
	if i >= len(s.outputs) {
		i = len(s.outputs) - 1
	}
	return s.outputs[i], nil
}

func msgOutput(message, writesTo string, options ...string) Output {
	msg := &schema.ClarificationMessage{
		Message:  message,
		Options:  options,
		WritesTo: writesTo,
	}
	msg.Normalize()
	return Output{AgentName: "scripted", Message: msg}
}

func newSessionStore(t *testing.T) globals.Store {
	t.Helper()
	store, err := globals.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func scriptedAnswers(t *testing.T, answers ...string) AnswerFunc {
	t.Helper()
	i := 0
	return func(_ context.Context, _ *schema.ClarificationMessage) (string, error) {
		if i >= len(answers) {
			t.Fatal("answer func called more times than scripted")
		}
		answer := answers[i]
		i++
		return answer, nil
	}
}

func TestOrchestrator_RecordsAnswers(t *testing.T) {
	store := newSessionStore(t)
	agent := &scriptedAgent{outputs: []Output{
		msgOutput("Where should the service be deployed?", "deploy_target", "staging", "production"),
		msgOutput("What is the monthly budget?", "budget"),
	}}

	o := NewOrchestrator(agent, store, globals.NewResolver(store, nil, 0), Options{MaxRounds: 2})
	result, err := o.Run(context.Background(), "deploy my service", scriptedAnswers(t, "staging", "500 USD"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(result.Rounds))
	}
	for key, want := range map[string]string{"deploy_target": "staging", "budget": "500 USD"} {
		entry, err := store.Get(key)
		if err != nil || entry == nil {
			t.Fatalf("get %s: %v (entry %v)", key, err, entry)
		}
		if !entry.Answered() || entry.Answer != want {
			t.Errorf("%s = %+v, want answered %q", key, entry, want)
		}
	}

	// The second round must see the first exchange in history and the
	// recorded key in the store snapshot.
	second := agent.inputs[1]
	if !strings.Contains(second.History, "deploy_target") || !strings.Contains(second.History, "staging") {
		t.Errorf("second round history missing first exchange: %q", second.History)
	}
	sawAnswered := false
	for _, e := range second.Globals {
		if e.Key == "deploy_target" && e.Answered() {
			sawAnswered = true
		}
	}
	if !sawAnswered {
		t.Error("second round snapshot missing answered deploy_target")
	}
}

func TestOrchestrator_ConvergesOnAnsweredKey(t *testing.T) {
	store := newSessionStore(t)
	if err := store.Answer("region", "eu-west"); err != nil {
		t.Fatal(err)
	}
	agent := &scriptedAgent{outputs: []Output{
		msgOutput("Which region should we use?", "region"),
	}}

	o := NewOrchestrator(agent, store, globals.NewResolver(store, nil, 0), Options{MaxRounds: 5})
	asked := false
	result, err := o.Run(context.Background(), "deploy my service",
		func(context.Context, *schema.ClarificationMessage) (string, error) {
			asked = true
			return "", nil
		})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if asked {
		t.Error("user was asked for an already recorded answer")
	}
	if len(result.Rounds) != 1 || !result.Rounds[0].Resolved {
		t.Fatalf("rounds = %+v, want one resolved round", result.Rounds)
	}
	if result.Rounds[0].Answer != "eu-west" {
		t.Errorf("resolved answer = %q, want eu-west", result.Rounds[0].Answer)
	}
}

func TestOrchestrator_RetriesParseFailure(t *testing.T) {
	store := newSessionStore(t)
	agent := &scriptedAgent{outputs: []Output{
		{AgentName: "scripted", RawOutput: "not json", Error: errors.New("parse output")},
		msgOutput("What is the project name?", "project_name"),
	}}

	o := NewOrchestrator(agent, store, globals.NewResolver(store, nil, 0), Options{MaxRounds: 1})
	result, err := o.Run(context.Background(), "set up a project", scriptedAnswers(t, "atlas"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.ParseFailures != 1 {
		t.Errorf("parse failures = %d, want 1", result.ParseFailures)
	}
	if len(result.Rounds) != 1 {
		t.Fatalf("rounds = %d, want 1 (retry must not consume the budget)", len(result.Rounds))
	}
}

func TestOrchestrator_GivesUpAfterRepeatedParseFailures(t *testing.T) {
	store := newSessionStore(t)
	agent := &scriptedAgent{outputs: []Output{
		{AgentName: "scripted", RawOutput: "not json", Error: errors.New("parse output")},
	}}

	o := NewOrchestrator(agent, store, globals.NewResolver(store, nil, 0), Options{MaxRounds: 3})
	_, err := o.Run(context.Background(), "set up a project",
		func(context.Context, *schema.ClarificationMessage) (string, error) {
			t.Fatal("answer func must not be called")
			return "", nil
		})
	if err == nil {
		t.Fatal("expected error after repeated parse failures")
	}
}

func TestOrchestrator_StopSession(t *testing.T) {
	store := newSessionStore(t)
	agent := &scriptedAgent{outputs: []Output{
		msgOutput("What is the project name?", "project_name"),
	}}

	o := NewOrchestrator(agent, store, globals.NewResolver(store, nil, 0), Options{MaxRounds: 5})
	result, err := o.Run(context.Background(), "set up a project",
		func(context.Context, *schema.ClarificationMessage) (string, error) {
			return "", ErrStopSession
		})
	if err != nil {
		t.Fatalf("stop must not be an error: %v", err)
	}
	if !result.Stopped {
		t.Error("result should report the session as stopped")
	}
}

// upperNormalizer is a stand-in for the synthesis agent.
type upperNormalizer struct{ calls int }

func (u *upperNormalizer) Normalize(_ context.Context, _, reply string) string {
	u.calls++
	return strings.ToUpper(reply)
}

func TestOrchestrator_NormalizesFreeFormAnswers(t *testing.T) {
	store := newSessionStore(t)
	agent := &scriptedAgent{outputs: []Output{
		msgOutput("Pick an environment", "environment", "staging", "production"),
		msgOutput("Describe the workload", "workload"),
	}}
	norm := &upperNormalizer{}

	o := NewOrchestrator(agent, store, globals.NewResolver(store, nil, 0), Options{
		MaxRounds:   2,
		Synthesizer: norm,
	})
	_, err := o.Run(context.Background(), "size my cluster", scriptedAnswers(t, "staging", "mostly batch jobs"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Option picks are recorded verbatim; only the free-form round goes
	// through the normalizer.
	if norm.calls != 1 {
		t.Errorf("normalizer calls = %d, want 1", norm.calls)
	}
	entry, _ := store.Get("environment")
	if entry == nil || entry.Answer != "staging" {
		t.Errorf("environment = %+v, want verbatim staging", entry)
	}
	entry, _ = store.Get("workload")
	if entry == nil || entry.Answer != "MOSTLY BATCH JOBS" {
		t.Errorf("workload = %+v, want normalized value", entry)
	}
}

func TestOrchestrator_PendingQuestionPersisted(t *testing.T) {
	store := newSessionStore(t)
	agent := &scriptedAgent{outputs: []Output{
		msgOutput("What is the project name?", "project_name"),
	}}

	o := NewOrchestrator(agent, store, globals.NewResolver(store, nil, 0), Options{MaxRounds: 1})
	if _, err := o.Run(context.Background(), "set up a project", scriptedAnswers(t, "atlas")); err != nil {
		t.Fatalf("run: %v", err)
	}

	entry, err := store.Get("project_name")
	if err != nil || entry == nil {
		t.Fatalf("get: %v (entry %v)", err, entry)
	}
	if entry.Question != "What is the project name?" {
		t.Errorf("question = %q, want the asked message", entry.Question)
	}
}
