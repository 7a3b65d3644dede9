package agentnode

import (
	"context"
	"testing"

	"github.com/quillforge/core/llmclient"
	"github.com/tmc/langchaingo/llms"
)

type fakeResearchModel struct {
	seenPrompt string
}

func (f *fakeResearchModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		if m.Role == llms.ChatMessageTypeSystem {
			if part, ok := m.Parts[0].(llms.TextContent); ok {
				f.seenPrompt = part.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "synthesized answer"}}}, nil
}

type fakeRetriever struct {
	docs []ResearchDocument
}

func (f *fakeRetriever) GetRelevantDocuments(_ context.Context, _ string) ([]ResearchDocument, error) {
	return f.docs, nil
}

func TestResearchGeneratorIncludesRetrievedContext(t *testing.T) {
	t.Parallel()

	client := llmclient.New(llmclient.BackendOpenAI)
	model := &fakeResearchModel{}
	client.Register(llmclient.BackendOpenAI, model)

	retriever := &fakeRetriever{docs: []ResearchDocument{{Content: "the sky is blue", Source: "doc-1"}}}
	gen := NewResearchGenerator(client, "", retriever, nil)

	text, _, toolsUsed, err := gen(context.Background(), AgentNodeState{Query: "why is the sky blue?"})
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	if text != "synthesized answer" {
		t.Fatalf("unexpected answer: %q", text)
	}
	if len(toolsUsed) != 1 || toolsUsed[0] != "retriever" {
		t.Fatalf("expected retriever to be recorded as used, got %v", toolsUsed)
	}
	if model.seenPrompt == "" {
		t.Fatalf("expected retrieved context to be folded into the system prompt")
	}
}

func TestResearchGeneratorWorksWithoutRetrieverOrTool(t *testing.T) {
	t.Parallel()

	client := llmclient.New(llmclient.BackendOpenAI)
	client.Register(llmclient.BackendOpenAI, &fakeResearchModel{})

	gen := NewResearchGenerator(client, "", nil, nil)
	text, _, toolsUsed, err := gen(context.Background(), AgentNodeState{Query: "hello"})
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	if text != "synthesized answer" {
		t.Fatalf("unexpected answer: %q", text)
	}
	if len(toolsUsed) != 0 {
		t.Fatalf("expected no tools used, got %v", toolsUsed)
	}
}
