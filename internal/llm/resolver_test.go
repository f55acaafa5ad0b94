package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnconfiguredTier(t *testing.T) {
	r := NewResolver(map[Tier]TierConfig{})

	_, err := r.Resolve(TierFast)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResolveMissingAPIKey(t *testing.T) {
	r := NewResolver(map[Tier]TierConfig{
		TierFast: {Provider: ProviderGemini, Model: "gemini-2.0-flash"},
	})

	_, err := r.Resolve(TierFast)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResolveCachesHandle(t *testing.T) {
	r := NewResolver(map[Tier]TierConfig{
		TierFast: {Provider: ProviderGemini, APIKey: "test-key", Model: "gemini-2.0-flash"},
	})

	first, err := r.Resolve(TierFast)
	require.NoError(t, err)
	second, err := r.Resolve(TierFast)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestResolvePerProvider(t *testing.T) {
	r := NewResolver(map[Tier]TierConfig{
		TierFast:     {Provider: ProviderGemini, APIKey: "k", Model: "m-fast"},
		TierBalanced: {Provider: ProviderOpenAI, APIKey: "k", Model: "m-balanced"},
		TierDeep:     {Provider: ProviderAnthropic, APIKey: "k", Model: "m-deep"},
	})

	fast, err := r.Resolve(TierFast)
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, fast)
	assert.Equal(t, "m-fast", fast.Model())

	balanced, err := r.Resolve(TierBalanced)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, balanced)

	deep, err := r.Resolve(TierDeep)
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, deep)
}

func TestResolveUnknownProvider(t *testing.T) {
	r := NewResolver(map[Tier]TierConfig{
		TierFast: {Provider: "cohere", APIKey: "k"},
	})

	_, err := r.Resolve(TierFast)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestDefaultProviderIsGemini(t *testing.T) {
	r := NewResolver(map[Tier]TierConfig{
		TierFast: {APIKey: "k"},
	})

	client, err := r.Resolve(TierFast)
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, client)
}
