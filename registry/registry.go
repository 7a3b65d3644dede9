// Package registry implements the Agent Registry (spec §4.4): a name to
// agent-factory lookup. Each produced agent exposes a uniform
// process(state) -> state contract plus a declared capability list, so the
// Workflow Engine (E) can validate a plan's agent_types before scheduling
// any step.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/quillforge/core/corerr"
)

// AgentResult is the uniform output of Agent.Process, matching spec §3's
// AgentResult record.
type AgentResult struct {
	AgentType     string
	ExecutionID   string
	Status        string
	Response      string
	DataOutputs   map[string]any
	ToolsUsed     []string
	ExecutionTime float64
	Timestamp     int64
	Confidence    *float64
	ErrorMessage  string
}

// Agent is the uniform contract every produced agent exposes. Process is
// pure with respect to its inputs, modulo LLM and tool calls, which are
// dispatched through clients injected at construction time (Deps).
type Agent interface {
	Process(ctx context.Context, state map[string]any) (AgentResult, error)
	Capabilities() []string
}

// Factory builds an Agent from its injected dependencies. Deps is left
// as `any` here so this package stays independent of any one dependency
// struct's shape; concrete factories close over their own Deps type.
type Factory func(deps any) Agent

// Registry is a name -> Factory lookup, guarded by a sync.RWMutex so
// registration at startup and concurrent lookups during scheduling never
// race, the same discipline the teacher's prebuilt package applies to its
// per-agent-kind constructors.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds factory under agentType, overwriting any prior registration
// for that name.
func (r *Registry) Register(agentType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[agentType] = factory
}

// Build instantiates the agent registered under agentType. An unknown
// agentType is a corerr.FatalConfig error, matching spec §4.4's "unknown
// agent types produce a loader error that fails the owning step with
// FatalConfig."
func (r *Registry) Build(agentType string, deps any) (Agent, error) {
	r.mu.RLock()
	factory, ok := r.factories[agentType]
	r.mu.RUnlock()
	if !ok {
		return nil, corerr.New(corerr.FatalConfig, fmt.Sprintf("unknown agent type %q", agentType), nil)
	}
	return factory(deps), nil
}

// Known reports whether agentType has a registered factory, used by the
// Workflow Engine's dynamic-plan validation to reject unknown agent_types
// before scheduling rather than failing mid-run.
func (r *Registry) Known(agentType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[agentType]
	return ok
}

// Capabilities returns the declared capabilities of the agent registered
// under agentType, building a throwaway instance to read them. It returns
// (nil, false) for an unknown agentType.
func (r *Registry) Capabilities(agentType string, deps any) ([]string, bool) {
	r.mu.RLock()
	factory, ok := r.factories[agentType]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(deps).Capabilities(), true
}
