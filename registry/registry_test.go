package registry

import (
	"context"
	"testing"

	"github.com/quillforge/core/corerr"
)

type stubAgent struct {
	caps []string
}

func (s stubAgent) Process(_ context.Context, state map[string]any) (AgentResult, error) {
	return AgentResult{AgentType: "stub", Status: "completed"}, nil
}

func (s stubAgent) Capabilities() []string { return s.caps }

func TestRegisterAndBuild(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("researcher", func(deps any) Agent {
		return stubAgent{caps: []string{"research"}}
	})

	agent, err := r.Build("researcher", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := agent.Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "completed" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestBuildUnknownAgentTypeIsFatalConfig(t *testing.T) {
	t.Parallel()

	r := New()
	_, err := r.Build("nonexistent", nil)
	if err == nil {
		t.Fatal("expected error for unknown agent type")
	}
	if kind, ok := corerr.KindOf(err); !ok || kind != corerr.FatalConfig {
		t.Fatalf("expected FatalConfig, got %v (ok=%v)", kind, ok)
	}
}

func TestKnownAndCapabilities(t *testing.T) {
	t.Parallel()

	r := New()
	if r.Known("writer") {
		t.Fatal("expected writer to be unknown before registration")
	}

	r.Register("writer", func(deps any) Agent {
		return stubAgent{caps: []string{"article_writing"}}
	})

	if !r.Known("writer") {
		t.Fatal("expected writer to be known after registration")
	}

	caps, ok := r.Capabilities("writer", nil)
	if !ok || len(caps) != 1 || caps[0] != "article_writing" {
		t.Fatalf("unexpected capabilities: %v (ok=%v)", caps, ok)
	}

	if _, ok := r.Capabilities("nonexistent", nil); ok {
		t.Fatal("expected ok=false for unknown agent type")
	}
}

func TestRegisterOverwritesExisting(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("agent", func(deps any) Agent { return stubAgent{caps: []string{"v1"}} })
	r.Register("agent", func(deps any) Agent { return stubAgent{caps: []string{"v2"}} })

	caps, ok := r.Capabilities("agent", nil)
	if !ok || len(caps) != 1 || caps[0] != "v2" {
		t.Fatalf("expected overwritten factory to win, got %v", caps)
	}
}
