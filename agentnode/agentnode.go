// Package agentnode builds the canonical per-agent state machine of spec
// §4.6: prepare_context → extract_content → generate → [resolve_operations]
// → format_response, expressed as a graph.StateGraph[AgentNodeState], the
// same AddNode/AddConditionalEdge wiring style prebuilt/agent_generic.go
// uses for its own node graphs. Concrete agents (researcher, writer,
// coder, validator, analyst, ...) are built by NewCanonical with an
// agent-supplied Generator; the core supplies everything else: context
// assembly, editing-mode detection, edit resolution, and result shaping.
package agentnode

import (
	"context"
	"fmt"
	"time"

	"github.com/quillforge/core/editresolver"
	"github.com/quillforge/core/graph"
	"github.com/quillforge/core/registry"
)

// ActiveEditor mirrors shared memory's active_editor snapshot (spec §3),
// frozen for the duration of one step per invariant I7.
type ActiveEditor struct {
	DocumentID    string
	Filename      string
	CanonicalPath string
	Frontmatter   map[string]any
	Content       string
	FolderID      string
	FrontmatterEnd int
}

// AgentNodeState flows through every node of a canonical agent graph.
type AgentNodeState struct {
	Query              string
	Persona            string
	SharedMemory       map[string]any
	ReferencedContext  map[string][]map[string]any
	ActiveEditor       *ActiveEditor
	EditingMode        bool
	CursorOffset       *int
	GeneratedText      string
	RawEditPlan        string // LLM's raw JSON for a structured edit plan, if any
	Operations         []editresolver.Operation
	Resolved           []editresolver.Resolved
	ToolsUsed          []string
	Warnings           []string
	DataOutputs        map[string]any
	Confidence         *float64
}

// Generator is the one agent-specific extension point: given the prepared
// state, produce generated text and/or a raw JSON edit plan. Everything
// around it (context prep, JSON repair, resolution, result shaping) is
// shared across agent types.
type Generator func(ctx context.Context, state AgentNodeState) (text string, rawEditPlan string, toolsUsed []string, err error)

// Canonical is a graph.StateGraph[AgentNodeState] wired to the spec §4.6
// shape and wrapped as a registry.Agent.
type Canonical struct {
	agentType string
	runnable  *graph.StateRunnable[AgentNodeState]
}

// NewCanonical compiles the canonical prepare_context → extract_content →
// generate → [resolve_operations] → format_response graph around gen.
func NewCanonical(agentType string, gen Generator) (*Canonical, error) {
	g := graph.NewStateGraph[AgentNodeState]()

	g.AddNode("prepare_context", "sanity-check inputs, detect editing mode, extract persona", nodePrepareContext)
	g.AddNode("extract_content", "pull referenced_context and active_editor content into the working state", nodeExtractContent)
	g.AddNode("generate", "invoke the agent's Generator", makeGenerateNode(gen))
	g.AddNode("resolve_operations", "route emitted EditorOperations through the Edit Resolver", nodeResolveOperations)
	g.AddNode("format_response", "build the final AgentResult payload", nodeFormatResponse)

	g.SetEntryPoint("prepare_context")
	g.AddEdge("prepare_context", "extract_content")
	g.AddEdge("extract_content", "generate")
	g.AddConditionalEdge("generate", func(_ context.Context, state AgentNodeState) string {
		if state.EditingMode && state.RawEditPlan != "" {
			return "resolve_operations"
		}
		return "format_response"
	})
	g.AddEdge("resolve_operations", "format_response")
	g.AddEdge("format_response", graph.END)

	g.SetRetryPolicy(&graph.RetryPolicy{
		MaxRetries:      0,
		BackoffStrategy: graph.FixedBackoff,
		RetryableErrors: []string{""},
	})

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("agentnode: compile %s: %w", agentType, err)
	}
	return &Canonical{agentType: agentType, runnable: runnable}, nil
}

// Capabilities reports the agent's declared capabilities to the registry.
func (c *Canonical) Capabilities() []string {
	return []string{c.agentType}
}

// Process implements registry.Agent: it assembles an AgentNodeState from
// the workflow-supplied state map, runs the canonical graph, and flattens
// the result back into a registry.AgentResult.
func (c *Canonical) Process(ctx context.Context, state map[string]any) (registry.AgentResult, error) {
	initial := stateFromMap(state)

	start := time.Now()
	out, err := c.runnable.Invoke(ctx, initial)
	if err != nil {
		return registry.AgentResult{}, fmt.Errorf("agentnode: %s: %w", c.agentType, err)
	}

	return registry.AgentResult{
		AgentType:     c.agentType,
		Status:        "success",
		Response:      out.GeneratedText,
		DataOutputs:   out.DataOutputs,
		ToolsUsed:     out.ToolsUsed,
		ExecutionTime: time.Since(start).Seconds(),
		Timestamp:     time.Now().Unix(),
		Confidence:    out.Confidence,
	}, nil
}

func stateFromMap(state map[string]any) AgentNodeState {
	s := AgentNodeState{SharedMemory: state}
	if q, ok := state["query"].(string); ok {
		s.Query = q
	}
	if p, ok := state["persona"].(string); ok {
		s.Persona = p
	}
	if ed, ok := state["active_editor"].(*ActiveEditor); ok {
		s.ActiveEditor = ed
	}
	if rc, ok := state["referenced_context"].(map[string][]map[string]any); ok {
		s.ReferencedContext = rc
	}
	if cur, ok := state["cursor_offset"].(*int); ok {
		s.CursorOffset = cur
	}
	return s
}
