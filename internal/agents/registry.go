package agents

import (
	"sort"
	"sync"

	"clarion/internal/llm"
)

// AgentFactory creates an agent from an LLM configuration.
type AgentFactory func(cfg llm.Config) Agent

var (
	factories   = make(map[string]AgentFactory)
	factoriesMu sync.RWMutex
)

// RegisterAgentFactory registers a factory function for creating an agent.
func RegisterAgentFactory(id string, factory AgentFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[id] = factory
}

// CreateAgent creates an agent by ID using the registered factory.
// Returns nil when no factory is registered for the ID.
func CreateAgent(id string, cfg llm.Config) Agent {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	if factory, ok := factories[id]; ok {
		return factory(cfg)
	}
	return nil
}

// RegisteredAgents returns the IDs of all registered factories, sorted.
func RegisteredAgents() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	ids := make([]string, 0, len(factories))
	for id := range factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
