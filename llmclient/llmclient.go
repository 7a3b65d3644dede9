// Package llmclient wraps tmc/langchaingo's llms.Model interface (the
// teacher's own LLM abstraction, used throughout prebuilt/ and examples/)
// behind model_hint-based routing (spec.md's invoke(..., model_hint, ...)):
// a sashabaranov/go-openai-backed implementation via langchaingo's
// llms/openai package, and the teacher's own llms/ernie backend, wrapped
// the same "custom HTTP client as an llms.Model" way chat_agent.go and
// prebuilt/agent_generic.go already consume any llms.Model.
package llmclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/quillforge/core/corerr"
)

// Backend name constants used as model_hint prefixes, e.g. "openai:gpt-4o"
// or "ernie:ernie-4.5-turbo-128k".
const (
	BackendOpenAI = "openai"
	BackendErnie  = "ernie"
)

// Client routes invoke(..., model_hint, ...) calls to one of several
// llms.Model backends.
type Client struct {
	backends map[string]llms.Model
	fallback string
}

// New creates a Client with no backends registered; call Register for each
// backend before use.
func New(fallback string) *Client {
	return &Client{backends: make(map[string]llms.Model), fallback: fallback}
}

// Register adds or replaces the backend served under name.
func (c *Client) Register(name string, model llms.Model) {
	c.backends[name] = model
}

func (c *Client) resolve(modelHint string) (llms.Model, error) {
	name := modelHint
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		name = c.fallback
	}
	if model, ok := c.backends[name]; ok {
		return model, nil
	}
	if model, ok := c.backends[c.fallback]; ok {
		return model, nil
	}
	return nil, corerr.New(corerr.FatalConfig, "no llm backend registered for model_hint "+modelHint, nil)
}

// Generate sends a single human-turn prompt (optionally preceded by a
// system prompt) to the backend selected by modelHint and returns the
// first completion's text, mirroring chat_agent.go's
// TextParts/ContentResponse extraction.
func (c *Client) Generate(ctx context.Context, modelHint, systemPrompt, userPrompt string) (string, error) {
	model, err := c.resolve(modelHint)
	if err != nil {
		return "", err
	}

	var messages []llms.MessageContent
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userPrompt))

	resp, err := model.GenerateContent(ctx, messages)
	if err != nil {
		return "", corerr.Wrap(corerr.Transient, err, "generate via model_hint %s", modelHint)
	}
	if len(resp.Choices) == 0 {
		return "", corerr.New(corerr.Transient, fmt.Sprintf("empty response for model_hint %s", modelHint), nil)
	}
	return resp.Choices[0].Content, nil
}
