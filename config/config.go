// Package config loads the core's environment-sourced configuration once
// at startup (spec §6: config arrives via environment, no CLI/file
// surface). Defaults mirror llms/ernie/options.go's
// getEnvOrDefault-into-struct pattern; there is no functional-options
// layer here since, unlike a constructed client, this struct is read
// wholesale from the process environment with nothing else to compose.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/quillforge/core/llms/ernie"
)

// Config is every environment-sourced setting the core's components need.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	ErnieAPIKey string
	ErnieModel  ernie.ModelName

	BraveAPIKey   string
	WeatherAPIKey string

	MessageEncryptionMasterKey string

	CheckpointRetention time.Duration
	ProposalExpiry      time.Duration
	FeedPollInterval    time.Duration
	PresenceOfflineAfter time.Duration

	LogLevel string
}

// Load reads Config from the process environment, applying the core's
// defaults for anything unset.
func Load() Config {
	return Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_API_BASE"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),

		ErnieAPIKey: os.Getenv("ERNIE_API_KEY"),
		ErnieModel:  ernie.ModelName(getEnvOrDefault("ERNIE_MODEL", string(ernie.ModelNameERNIESpeed8K))),

		BraveAPIKey:   os.Getenv("BRAVE_API_KEY"),
		WeatherAPIKey: os.Getenv("WEATHER_API_KEY"),

		MessageEncryptionMasterKey: os.Getenv("MESSAGE_ENCRYPTION_MASTER_KEY"),

		CheckpointRetention:  getEnvDuration("CHECKPOINT_RETENTION", 24*time.Hour),
		ProposalExpiry:       getEnvDuration("PROPOSAL_EXPIRY", 24*time.Hour),
		FeedPollInterval:     getEnvDuration("FEED_POLL_INTERVAL", 5*time.Minute),
		PresenceOfflineAfter: getEnvDuration("PRESENCE_OFFLINE_AFTER", 5*time.Minute),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
