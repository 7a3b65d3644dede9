package llmclient

import (
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/quillforge/core/corerr"
	"github.com/quillforge/core/llms/ernie"
)

// Config is the minimal environment-sourced configuration FromConfig
// needs, mirroring examples/planning_agent/main.go's
// OPENAI_API_BASE/OPENAI_MODEL env-var reads and llms/ernie's
// WithAPIKey/WithModel functional options.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	ErnieAPIKey string
	ErnieModel  ernie.ModelName

	// Fallback is the backend name used when a caller passes an empty or
	// unrecognised model_hint.
	Fallback string
}

// FromConfig builds a Client with an openai.New-backed and an
// ernie.New-backed llms.Model registered, selected later by model_hint.
// Either backend may be left unconfigured (empty API key); FromConfig
// registers only the backends it can construct.
func FromConfig(cfg Config) (*Client, error) {
	fallback := cfg.Fallback
	if fallback == "" {
		fallback = BackendOpenAI
	}
	client := New(fallback)

	if cfg.OpenAIAPIKey != "" {
		opts := []openai.Option{openai.WithToken(cfg.OpenAIAPIKey)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		if cfg.OpenAIModel != "" {
			opts = append(opts, openai.WithModel(cfg.OpenAIModel))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, corerr.Wrap(corerr.FatalConfig, err, "construct openai backend")
		}
		client.Register(BackendOpenAI, model)
	}

	if cfg.ErnieAPIKey != "" {
		ernieOpts := []ernie.Option{ernie.WithAPIKey(cfg.ErnieAPIKey)}
		if cfg.ErnieModel != "" {
			ernieOpts = append(ernieOpts, ernie.WithModel(cfg.ErnieModel))
		}
		model, err := ernie.New(ernieOpts...)
		if err != nil {
			return nil, corerr.Wrap(corerr.FatalConfig, err, "construct ernie backend")
		}
		client.Register(BackendErnie, model)
	}

	return client, nil
}
