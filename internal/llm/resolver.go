package llm

import (
	"fmt"
	"sync"
)

// Provider identifies a text-generation backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// TierConfig binds one tier to a provider, key and model.
type TierConfig struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
}

// Resolver maps tiers to constructed clients. Construction is lazy and
// handles are cached; an unconfigured tier resolves to ErrUnavailable so
// callers can branch on availability instead of recovering from panics.
type Resolver struct {
	mu      sync.Mutex
	tiers   map[Tier]TierConfig
	clients map[Tier]Client
}

// NewResolver creates a Resolver from per-tier configuration. Tiers absent
// from the map are simply unavailable.
func NewResolver(tiers map[Tier]TierConfig) *Resolver {
	return &Resolver{
		tiers:   tiers,
		clients: make(map[Tier]Client),
	}
}

// Resolve returns the client for a tier, constructing it on first use.
func (r *Resolver) Resolve(tier Tier) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[tier]; ok {
		return client, nil
	}

	cfg, ok := r.tiers[tier]
	if !ok || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w %q", ErrUnavailable, tier)
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	r.clients[tier] = client
	return client, nil
}

func newClient(cfg TierConfig) (Client, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		c := DefaultGeminiConfig(cfg.APIKey)
		if cfg.Model != "" {
			c.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
		return NewGeminiClientWithConfig(c), nil
	case ProviderOpenAI:
		c := DefaultOpenAIConfig(cfg.APIKey)
		if cfg.Model != "" {
			c.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
		return NewOpenAIClientWithConfig(c), nil
	case ProviderAnthropic:
		c := DefaultAnthropicConfig(cfg.APIKey)
		if cfg.Model != "" {
			c.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
		return NewAnthropicClientWithConfig(c), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q (valid: gemini, openai, anthropic)", cfg.Provider)
	}
}
