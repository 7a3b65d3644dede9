// Package core is the agent orchestration core of a knowledge-work
// workspace backend: a generics-based state graph engine (package graph)
// plus the domain packages that turn it into the workspace's agent
// platform — canonical agent nodes, a continuity tracker, background
// pipelines, an encrypted messaging/presence core, and an edit-proposal
// registry.
//
// # Package Structure
//
// graph/ is the core DAG construction and execution engine: StateGraph[S]
// built with AddNode/AddEdge/AddConditionalEdge, compiled into a
// StateRunnable[S] with retry policies, state mergers, and subgraph
// composition.
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("process", "describe the step", func(ctx context.Context, s MyState) (MyState, error) {
//		s.Processed = true
//		return s, nil
//	})
//	g.SetEntryPoint("process")
//	g.AddEdge("process", graph.END)
//	runnable, _ := g.Compile()
//	result, _ := runnable.Invoke(ctx, initialState)
//
// agentnode/ builds the canonical per-agent graph shared by every concrete
// agent type (researcher, writer, coder, ...): prepare_context →
// extract_content → generate → [resolve_operations] → format_response,
// wrapping the result as a registry.Agent.
//
// continuity/ tracks narrative state (characters, plot threads, timeline,
// world changes, tensions) across a manuscript's chapters, merging and
// pruning it per chapter and validating new content against it.
//
// pipeline/ schedules background jobs — feed polling, presence reaping,
// checkpoint GC, proposal expiry — each a robfig/cron/v3 Job fanned out
// per tick with golang.org/x/sync/errgroup.
//
// messaging/ is the encrypted room/message/presence core: messages are
// sealed at rest with golang.org/x/crypto/nacl/secretbox and read back
// only for participants.
//
// proposal/ is the EditProposal registry: agents propose edits,
// operations resolve through editresolver, and applying the same
// proposal twice is idempotent.
//
// llmclient/ and toolclient/ wrap tmc/langchaingo's llms.Model and a
// handful of HTTP-backed tools (URL fetch, weather, AWS pricing) behind
// the core's own model_hint routing and tool-call idempotency keys.
//
// store/ holds the checkpoint persistence backends (SQLite, Postgres,
// Redis); config/ loads the process environment once at startup;
// editresolver/ turns an agent's emitted operations into concrete text
// edits; corerr/ is the shared closed error-kind taxonomy; registry/ and
// principal/ are the Agent and access-control contracts everything above
// is built against.
//
// # Configuration
//
// The core is configured entirely from the process environment (see
// config.Load); there is no config file or CLI surface.
package core
