package agentnode

import (
	"context"

	"github.com/quillforge/core/editresolver"
)

// nodePrepareContext implements spec §4.6's prepare_context: editing mode
// is editor-has-non-empty-body, per spec.md's "editor has non-empty body
// ⇒ editing".
func nodePrepareContext(_ context.Context, state AgentNodeState) (AgentNodeState, error) {
	state.EditingMode = state.ActiveEditor != nil && state.ActiveEditor.Content != ""
	state.DataOutputs = make(map[string]any)
	return state, nil
}

// nodeExtractContent pulls referenced_context and the active editor body
// into the working state; it does no truncation of its own, trusting the
// Shared Memory Store's own invariants on active_editor (I7: frozen for
// the step's duration).
func nodeExtractContent(_ context.Context, state AgentNodeState) (AgentNodeState, error) {
	if state.ReferencedContext == nil {
		state.ReferencedContext = map[string][]map[string]any{}
	}
	return state, nil
}

// makeGenerateNode wraps the agent-supplied Generator, applying the
// repair-once-then-degrade contract of spec §4.6 to any raw edit plan it
// returns.
func makeGenerateNode(gen Generator) func(context.Context, AgentNodeState) (AgentNodeState, error) {
	return func(ctx context.Context, state AgentNodeState) (AgentNodeState, error) {
		text, rawPlan, toolsUsed, err := gen(ctx, state)
		if err != nil {
			return state, err
		}
		state.GeneratedText = text
		state.RawEditPlan = rawPlan
		state.ToolsUsed = append(state.ToolsUsed, toolsUsed...)

		if state.EditingMode && rawPlan != "" {
			ops, warning, ok := repairAndParsePlan(rawPlan)
			if !ok {
				// Second repair attempt also failed: degrade to an empty
				// operations list but still report success, per spec §4.6.
				state.Operations = nil
				state.Warnings = append(state.Warnings, warning)
			} else {
				state.Operations = ops
				if warning != "" {
					state.Warnings = append(state.Warnings, warning)
				}
			}
		}
		return state, nil
	}
}

// nodeResolveOperations routes every emitted EditorOperation through the
// Edit Resolver (spec §4.6: "resolve_operations: for each emitted
// operation, call C").
func nodeResolveOperations(_ context.Context, state AgentNodeState) (AgentNodeState, error) {
	if state.ActiveEditor == nil || len(state.Operations) == 0 {
		return state, nil
	}
	state.Resolved = editresolver.ResolveBatch(
		state.ActiveEditor.Content,
		state.Operations,
		state.ActiveEditor.FrontmatterEnd,
		state.CursorOffset,
	)
	return state, nil
}

// nodeFormatResponse builds the data_outputs patch handed back to the
// workflow engine for merge into Shared Memory (spec §4.6: "format_response:
// build the AgentResult").
func nodeFormatResponse(_ context.Context, state AgentNodeState) (AgentNodeState, error) {
	if state.DataOutputs == nil {
		state.DataOutputs = make(map[string]any)
	}
	state.DataOutputs["response"] = state.GeneratedText
	if len(state.Resolved) > 0 {
		state.DataOutputs["resolved_operations"] = state.Resolved
	}
	if len(state.Warnings) > 0 {
		state.DataOutputs["warnings"] = state.Warnings
	}
	return state, nil
}
