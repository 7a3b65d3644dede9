// Package toolclient extends the teacher's tool.BraveSearch (web search)
// with URL-fetch, weather, and pricing clients in the same functional-
// options style, grounded respectively on tool/brave.go and
// original_source's weather_tools.py / aws_pricing_tools.py for the shape
// of their request/response. Every Tool call is keyed by an idempotency
// key derived from the SHA-256 of its canonicalised request (no pack
// library specializes in idempotency-key derivation, so this one piece is
// stdlib crypto/sha256, justified in DESIGN.md).
package toolclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Tool mirrors langchaingo's tools.Tool interface (Name/Description/Call),
// the same contract tool.BraveSearch already implements, so every
// toolclient tool can be registered alongside it in an agent's tool list.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
}

// IdempotencyKey derives the canonical key for a (toolName, input) call,
// used by callers that want to dedupe or cache tool invocations.
func IdempotencyKey(toolName, input string) string {
	sum := sha256.Sum256([]byte(toolName + "\x00" + input))
	return hex.EncodeToString(sum[:])
}

func httpError(status int, body string) error {
	return fmt.Errorf("toolclient: unexpected status %d: %s", status, body)
}
