// Package llm provides tiered text-generation clients.
//
// Three tiers select the model class a caller needs: FAST for low-latency
// classification and casual replies, BALANCED for quality-weighted analysis,
// DEEP for research synthesis. Every caller must tolerate a tier being
// unavailable; Resolve returns ErrUnavailable rather than a half-built
// client.
package llm

import (
	"context"
	"errors"
)

// Tier is the quality/latency class of a text-generation client.
type Tier string

const (
	TierFast     Tier = "fast"
	TierBalanced Tier = "balanced"
	TierDeep     Tier = "deep"
)

// ErrUnavailable is returned by Resolver.Resolve when no client can be
// constructed for the requested tier (no API key, no model configured).
var ErrUnavailable = errors.New("llm: no client available for tier")

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a conversation sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for a single generation.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the result of a successful generation.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// GenerateOptions tunes a single GenerateText call. A zero Temperature is
// passed through as-is; callers that want provider defaults should use the
// provider's documented default explicitly.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Client is the contract every provider implements.
//
// Initialize is idempotent and may fail (missing key, unreachable endpoint);
// callers treat an Initialize failure the same as a generation failure.
type Client interface {
	Initialize(ctx context.Context) error
	GenerateText(ctx context.Context, messages []Message, opts GenerateOptions) (*Response, error)
	GenerateJSON(ctx context.Context, messages []Message, temperature float64) (map[string]any, error)
	Model() string
}
