package adapter

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// OpenAIAdapter wraps any llms.Model (OpenAI's included, via langchaingo's
// own openai package) behind three increasingly specific call shapes, the
// same single-prompt/options/system-prompt split llms/ernie's LLM.Call and
// LLM.GenerateContent already expose.
type OpenAIAdapter struct {
	llm llms.Model
}

// NewOpenAIAdapter wraps llm.
func NewOpenAIAdapter(llm llms.Model) *OpenAIAdapter {
	return &OpenAIAdapter{llm: llm}
}

// Generate completes prompt with no extra options.
func (a *OpenAIAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, a.llm, prompt)
}

// GenerateWithConfig completes prompt, translating the recognized config
// keys ("temperature", "max_tokens") into llms.CallOptions; unrecognized
// keys or wrong-typed values are ignored rather than rejected.
func (a *OpenAIAdapter) GenerateWithConfig(ctx context.Context, prompt string, config map[string]any) (string, error) {
	var opts []llms.CallOption
	if temperature, ok := config["temperature"].(float64); ok {
		opts = append(opts, llms.WithTemperature(temperature))
	}
	if maxTokens, ok := config["max_tokens"].(int); ok {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	return llms.GenerateFromSinglePrompt(ctx, a.llm, prompt, opts...)
}

// GenerateWithSystem completes prompt with a separate system instruction,
// returning "" (not an error) when the model answers with no choices.
func (a *OpenAIAdapter) GenerateWithSystem(ctx context.Context, system, prompt string) (string, error) {
	var messages []llms.MessageContent
	if system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := a.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Content, nil
}
