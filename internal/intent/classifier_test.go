package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"haven/internal/llm"
)

// fakeClient scripts GenerateJSON behavior for classifier tests.
type fakeClient struct {
	initErr error
	json    map[string]any
	jsonErr error
}

func (f *fakeClient) Initialize(ctx context.Context) error { return f.initErr }

func (f *fakeClient) GenerateText(ctx context.Context, messages []llm.Message, opts llm.GenerateOptions) (*llm.Response, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) GenerateJSON(ctx context.Context, messages []llm.Message, temperature float64) (map[string]any, error) {
	return f.json, f.jsonErr
}

func (f *fakeClient) Model() string { return "fake" }

// fakeResolver yields a fixed client or an error for every tier.
type fakeResolver struct {
	client llm.Client
	err    error
}

func (f *fakeResolver) Resolve(tier llm.Tier) (llm.Client, error) { return f.client, f.err }

func unavailableResolver() *fakeResolver {
	return &fakeResolver{err: llm.ErrUnavailable}
}

func TestFallbackSingleCategoryKeywords(t *testing.T) {
	c := NewClassifier(unavailableResolver(), zap.NewNop())

	tests := []struct {
		input string
		want  Intent
	}{
		{"今日は本当につらい一日だった", IntentEmpathy},
		{"機械学習とは何か教えて", IntentKnowledge},
		{"この問題をどうすれば解決できる", IntentDeepDive},
		{"新しいアイデアを壁打ちしたい", IntentBrainstorm},
	}
	for _, tt := range tests {
		result := c.Classify(context.Background(), tt.input)
		assert.Equal(t, tt.want, result.Intent, "input %q", tt.input)
		assert.LessOrEqual(t, result.Confidence, 0.7)
		assert.Greater(t, result.Confidence, 0.0)
	}
}

func TestFallbackNoKeywordMatch(t *testing.T) {
	c := NewClassifier(unavailableResolver(), zap.NewNop())

	result := c.Classify(context.Background(), "こんにちは")
	assert.Equal(t, IntentChat, result.Intent)
	assert.Equal(t, 0.3, result.Confidence)
}

func TestFallbackConfidenceCapped(t *testing.T) {
	c := NewClassifier(unavailableResolver(), zap.NewNop())

	// Every match lands in one category, so the raw ratio is 1.0.
	result := c.Classify(context.Background(), "愚痴を聞いて。最悪で不安でつらい。")
	assert.Equal(t, IntentEmpathy, result.Intent)
	assert.Equal(t, 0.7, result.Confidence)
}

func TestFallbackTieResolvesToEnumOrder(t *testing.T) {
	c := NewClassifier(unavailableResolver(), zap.NewNop())

	// One empathy keyword and one brainstorm keyword; empathy comes first.
	result := c.Classify(context.Background(), "ため息が出る。でも可能性はある。")
	assert.Equal(t, IntentEmpathy, result.Intent)
}

func TestLLMPathParsesVerdict(t *testing.T) {
	client := &fakeClient{json: map[string]any{"intent": "empathy", "confidence": 0.92}}
	c := NewClassifier(&fakeResolver{client: client}, zap.NewNop())

	result := c.Classify(context.Background(), "なんでもない話")
	assert.Equal(t, IntentEmpathy, result.Intent)
	assert.Equal(t, 0.92, result.Confidence)
}

func TestLLMPathCategoryAbsentDefaultsToChat(t *testing.T) {
	client := &fakeClient{json: map[string]any{"something_else": true}}
	c := NewClassifier(&fakeResolver{client: client}, zap.NewNop())

	result := c.Classify(context.Background(), "whatever")
	assert.Equal(t, IntentChat, result.Intent)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestLLMPathUnknownIntentDefaultsToChat(t *testing.T) {
	client := &fakeClient{json: map[string]any{"intent": "philosophy", "confidence": "high"}}
	c := NewClassifier(&fakeResolver{client: client}, zap.NewNop())

	result := c.Classify(context.Background(), "whatever")
	assert.Equal(t, IntentChat, result.Intent)
	assert.Equal(t, 0.5, result.Confidence, "non-numeric confidence defaults")
}

func TestLLMPathNeverProducesState(t *testing.T) {
	client := &fakeClient{json: map[string]any{"intent": "state", "confidence": 0.9}}
	c := NewClassifier(&fakeResolver{client: client}, zap.NewNop())

	result := c.Classify(context.Background(), "体調メモ")
	assert.Equal(t, IntentChat, result.Intent)
}

func TestLLMPathConfidenceClamped(t *testing.T) {
	client := &fakeClient{json: map[string]any{"intent": "knowledge", "confidence": 3.5}}
	c := NewClassifier(&fakeResolver{client: client}, zap.NewNop())

	result := c.Classify(context.Background(), "whatever")
	assert.Equal(t, 1.0, result.Confidence)
}

func TestLLMCallFailureFallsBack(t *testing.T) {
	client := &fakeClient{jsonErr: errors.New("boom")}
	c := NewClassifier(&fakeResolver{client: client}, zap.NewNop())

	result := c.Classify(context.Background(), "機械学習とは何か教えて")
	assert.Equal(t, IntentKnowledge, result.Intent)
}

func TestInitFailureFallsBack(t *testing.T) {
	client := &fakeClient{initErr: errors.New("no credentials")}
	c := NewClassifier(&fakeResolver{client: client}, zap.NewNop())

	result := c.Classify(context.Background(), "こんにちは")
	assert.Equal(t, IntentChat, result.Intent)
	assert.Equal(t, 0.3, result.Confidence)
}

func TestParseIntent(t *testing.T) {
	assert.Equal(t, IntentDeepDive, ParseIntent("deep_dive"))
	assert.Equal(t, IntentState, ParseIntent("state"))
	assert.Equal(t, IntentChat, ParseIntent("unknown"))
	assert.Equal(t, IntentChat, ParseIntent(""))
}
