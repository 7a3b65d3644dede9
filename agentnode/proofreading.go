package agentnode

import (
	"context"

	"github.com/quillforge/core/graph"
)

// FlagIssue is one problem the proofreading sub-graph's flag_issues node
// surfaces for apply_fixes to act on.
type FlagIssue struct {
	Category string // e.g. "grammar", "continuity", "style"
	Excerpt  string
	Fix      string
}

// Flagger inspects text and surfaces candidate fixes.
type Flagger func(ctx context.Context, text string) ([]FlagIssue, error)

// Fixer applies a flagged issue's correction to text.
type Fixer func(ctx context.Context, text string, issue FlagIssue) (string, error)

// AddProofreader wires a reusable two-node flag_issues → apply_fixes
// proofreading sub-graph into parent as nodeName, grounded on spec §4.6's
// "reusable node-set composable into any writing agent ... its own
// checkpoint ... compile-time wiring decision, not runtime": callers
// decide at graph-construction time whether an agent includes this node
// at all, exactly like graph's existing subgraph.go composition.
//
// Unlike graph.AddSubgraph's generic converter pair (which replaces the
// parent's whole state with the resultConverter's output), the node added
// here only overwrites GeneratedText and appends to Warnings, leaving the
// rest of the parent AgentNodeState untouched.
func AddProofreader(parent *graph.StateGraph[AgentNodeState], nodeName string, flag Flagger, fix Fixer) error {
	sub, err := graph.NewSubgraph(nodeName, buildProofreadingSubgraph(flag, fix))
	if err != nil {
		return err
	}

	parent.AddNode(nodeName, "proofreading sub-graph: flag_issues -> apply_fixes", func(ctx context.Context, state AgentNodeState) (AgentNodeState, error) {
		result, err := sub.Execute(ctx, map[string]any{"text": state.GeneratedText})
		if err != nil {
			return state, err
		}
		out, ok := result.(map[string]any)
		if !ok {
			return state, nil
		}
		if text, ok := out["text"].(string); ok {
			state.GeneratedText = text
		}
		if issues, ok := out["issues"].([]FlagIssue); ok && len(issues) > 0 {
			state.Warnings = append(state.Warnings, "agentnode: proofreader applied fixes")
		}
		return state, nil
	})
	return nil
}

func buildProofreadingSubgraph(flag Flagger, fix Fixer) *graph.StateGraph[map[string]any] {
	sg := graph.NewStateGraph[map[string]any]()

	sg.AddNode("flag_issues", "surface candidate fixes", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		text, _ := state["text"].(string)
		issues, err := flag(ctx, text)
		if err != nil {
			return state, err
		}
		state["issues"] = issues
		return state, nil
	})

	sg.AddNode("apply_fixes", "apply each flagged fix in order", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		text, _ := state["text"].(string)
		issues, _ := state["issues"].([]FlagIssue)
		for _, issue := range issues {
			fixed, err := fix(ctx, text, issue)
			if err != nil {
				return state, err
			}
			text = fixed
		}
		state["text"] = text
		return state, nil
	})

	sg.SetEntryPoint("flag_issues")
	sg.AddEdge("flag_issues", "apply_fixes")
	sg.AddEdge("apply_fixes", graph.END)
	return sg
}
