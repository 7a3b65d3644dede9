package agentnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillforge/core/llmclient"
	"github.com/quillforge/core/toolclient"
)

// ResearchDocument is a retrieved passage of context, the same
// content/metadata shape prebuilt/rag.go's Document used for its RAG
// pipeline, trimmed to what a researcher agent actually cites.
type ResearchDocument struct {
	Content  string
	Source   string
	Metadata map[string]any
}

// Retriever finds documents relevant to a query, the same narrow
// contract as prebuilt/rag.go's Retriever interface (GetRelevantDocuments),
// kept here as agentnode's own type so the researcher generator doesn't
// need to import the rest of prebuilt's agent-construction surface.
type Retriever interface {
	GetRelevantDocuments(ctx context.Context, query string) ([]ResearchDocument, error)
}

// NewResearchGenerator builds the Generator for a "researcher" canonical
// agent (spec §2 agent roster): it retrieves supporting documents,
// optionally consults one toolclient.Tool for a live lookup (e.g. weather
// or pricing), and asks client to synthesize an answer grounded in both.
func NewResearchGenerator(client *llmclient.Client, modelHint string, retriever Retriever, liveTool toolclient.Tool) Generator {
	return func(ctx context.Context, state AgentNodeState) (string, string, []string, error) {
		var toolsUsed []string
		var contextBuf strings.Builder

		if retriever != nil {
			docs, err := retriever.GetRelevantDocuments(ctx, state.Query)
			if err != nil {
				return "", "", nil, fmt.Errorf("agentnode: research retrieval: %w", err)
			}
			for i, doc := range docs {
				fmt.Fprintf(&contextBuf, "[%d] (%s) %s\n", i+1, doc.Source, doc.Content)
			}
			if len(docs) > 0 {
				toolsUsed = append(toolsUsed, "retriever")
			}
		}

		if liveTool != nil && state.Query != "" {
			result, err := liveTool.Call(ctx, state.Query)
			if err == nil && result != "" {
				fmt.Fprintf(&contextBuf, "[live:%s] %s\n", liveTool.Name(), result)
				toolsUsed = append(toolsUsed, liveTool.Name())
			}
		}

		systemPrompt := "You are a research agent. Answer using only the supplied context; say so plainly when it is insufficient."
		if contextBuf.Len() > 0 {
			systemPrompt += "\n\nContext:\n" + contextBuf.String()
		}

		answer, err := client.Generate(ctx, modelHint, systemPrompt, state.Query)
		if err != nil {
			return "", "", toolsUsed, err
		}
		return answer, "", toolsUsed, nil
	}
}
