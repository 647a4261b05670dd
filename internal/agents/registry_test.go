package agents

import (
	"testing"

	"clarion/internal/llm"
)

func TestCreateAgent(t *testing.T) {
	cfg := llm.Config{Provider: llm.ProviderOpenAI, Model: "gpt-4o-mini"}

	agent := CreateAgent("clarification", cfg)
	if agent == nil {
		t.Fatal("expected a registered clarification agent")
	}
	if _, ok := agent.(*ClarificationAgent); !ok {
		t.Errorf("CreateAgent returned %T, want *ClarificationAgent", agent)
	}
	if agent.Name() != "clarification" {
		t.Errorf("Name = %q, want clarification", agent.Name())
	}

	synth := CreateAgent("synthesis", cfg)
	if _, ok := synth.(*SynthesisAgent); !ok {
		t.Errorf("CreateAgent returned %T, want *SynthesisAgent", synth)
	}

	if CreateAgent("unknown", cfg) != nil {
		t.Error("expected nil for an unregistered id")
	}
}
