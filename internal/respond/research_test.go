package respond

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"haven/internal/intent"
	"haven/internal/llm"
)

func TestDeepResearchPrefixesMarker(t *testing.T) {
	client := &fakeClient{reply: "調査レポート本文"}
	resolver := &tierResolver{clients: map[llm.Tier]llm.Client{llm.TierDeep: client}}
	strategy := NewDeepResearchStrategy(resolver, zap.NewNop())

	out := strategy.Run(context.Background(), Request{Input: "量子コンピュータの現状は？"})
	assert.Equal(t, deepResearchMarker+"調査レポート本文", out)
	assert.True(t, strings.HasPrefix(out, "🔬 **Deep Research 結果**\n\n"))
	assert.Equal(t, 0.3, client.lastOpts.Temperature)
}

func TestDeepResearchReframesWithPriorResponse(t *testing.T) {
	client := &fakeClient{reply: "深掘り結果"}
	resolver := &tierResolver{clients: map[llm.Tier]llm.Client{llm.TierDeep: client}}
	strategy := NewDeepResearchStrategy(resolver, zap.NewNop())

	strategy.Run(context.Background(), Request{
		Input:         "転職市場について教えて",
		PriorResponse: "最初の回答です。",
	})

	query := client.lastMessages[1].Content
	assert.Contains(t, query, "元の質問: 転職市場について教えて")
	assert.Contains(t, query, "初回の回答（これを深掘りしてください）:\n最初の回答です。")
}

func TestDeepResearchWithoutPriorUsesRawQuery(t *testing.T) {
	client := &fakeClient{reply: "結果"}
	resolver := &tierResolver{clients: map[llm.Tier]llm.Client{llm.TierDeep: client}}
	strategy := NewDeepResearchStrategy(resolver, zap.NewNop())

	strategy.Run(context.Background(), Request{Input: "気候変動の影響"})
	assert.Equal(t, "気候変動の影響", client.lastMessages[1].Content)
}

func TestDeepResearchUnavailable(t *testing.T) {
	strategy := NewDeepResearchStrategy(emptyResolver(), zap.NewNop())
	out := strategy.Run(context.Background(), Request{Input: "なにか"})
	assert.Equal(t, deepResearchUnavailableReply, out)
}

func TestDeepResearchGenerationFailure(t *testing.T) {
	client := &fakeClient{genErr: errors.New("deadline exceeded")}
	resolver := &tierResolver{clients: map[llm.Tier]llm.Client{llm.TierDeep: client}}
	strategy := NewDeepResearchStrategy(resolver, zap.NewNop())

	out := strategy.Run(context.Background(), Request{Input: "なにか"})
	assert.Equal(t, deepResearchFailedReply, out)
}

func TestRouterDeepResearchBypassesClassification(t *testing.T) {
	client := &fakeClient{reply: "レポート"}
	resolver := &tierResolver{clients: map[llm.Tier]llm.Client{llm.TierDeep: client}}
	// A classifier that would panic if consulted.
	router := NewRouter(panicClassifier{}, resolver, zap.NewNop())

	out := router.DeepResearch(context.Background(), Request{Input: "q", PriorResponse: "a"})
	assert.Equal(t, deepResearchMarker+"レポート", out)
}

type panicClassifier struct{}

func (panicClassifier) Classify(ctx context.Context, inputText string) intent.ClassificationResult {
	panic("classification must not run for deep research")
}
