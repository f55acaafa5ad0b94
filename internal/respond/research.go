package respond

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"haven/internal/llm"
)

const deepResearchSystemPrompt = `あなたは Deep Research アシスタントです。
ユーザーのクエリに対して、徹底的かつ包括的な調査レポートを作成してください。

### 調査方針:
1. **多角的な視点**: 複数の観点からトピックを分析する
2. **構造化された回答**: 見出し・箇条書きを使って情報を整理する
3. **エビデンスベース**: 主張には根拠や出典の方向性を示す
4. **実用性重視**: ユーザーが次のアクションを取れるような具体的な情報を提供する

### 出力フォーマット:
- 概要（1-2文のサマリー）
- 主要な発見・知見（箇条書き）
- 詳細分析（各ポイントの掘り下げ）
- 次のステップの提案

### 注意事項:
- 日本語で応答する
- 確証のない情報は「〜の可能性があります」等と明記する
- 専門用語には簡潔な説明を付ける
`

// deepResearchMarker visually distinguishes a research reply from a
// primary-tier reply.
const deepResearchMarker = "🔬 **Deep Research 結果**\n\n"

const deepResearchUnavailableReply = "申し訳ありません。Deep Research サービスが現在利用できません。\n通常の回答をご参照ください。"

const deepResearchFailedReply = "Deep Research の実行中にエラーが発生しました。\n通常の回答をご参照ください。再度お試しいただくこともできます。"

// deepResearchStrategy runs on the DEEP tier. It is reachable only via the
// explicit follow-up trigger, never via primary classification.
type deepResearchStrategy struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewDeepResearchStrategy creates the deep-research strategy.
func NewDeepResearchStrategy(resolver Resolver, logger *zap.Logger) Strategy {
	return &deepResearchStrategy{resolver: resolver, logger: logger}
}

// Run synthesizes a research report. When the request carries the prior
// reply, the query is reframed as the original question plus the answer to
// deepen; otherwise the raw query is used unmodified.
func (s *deepResearchStrategy) Run(ctx context.Context, req Request) string {
	client, err := s.resolver.Resolve(llm.TierDeep)
	if err != nil {
		return deepResearchUnavailableReply
	}
	if err := client.Initialize(ctx); err != nil {
		s.logger.Warn("deep research client init failed", zap.Error(err))
		return deepResearchUnavailableReply
	}

	query := req.Input
	if req.PriorResponse != "" {
		query = fmt.Sprintf("元の質問: %s\n\n初回の回答（これを深掘りしてください）:\n%s",
			req.Input, req.PriorResponse)
	}

	resp, err := client.GenerateText(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: withProfileContext(deepResearchSystemPrompt, req.ProfileSummary)},
		{Role: llm.RoleUser, Content: query},
	}, llm.GenerateOptions{Temperature: 0.3})
	if err != nil {
		s.logger.Warn("deep research generation failed", zap.Error(err))
		return deepResearchFailedReply
	}

	return deepResearchMarker + resp.Content
}
