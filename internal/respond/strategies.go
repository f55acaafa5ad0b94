package respond

import (
	"go.uber.org/zap"

	"haven/internal/llm"
)

const chatSystemPrompt = `あなたは雑談を担当するチャットアシスタントです。
ユーザーとの雑談・カジュアルな会話を担当しています。

トーン:
- 親しみやすく自然な会話スタイル
- 簡潔に、でも温かみのある応答
- 相手の話題に関心を示す

注意:
- アドバイスや教訓は不要。気軽な会話として応答する
- 日本語で応答する
`

const empathySystemPrompt = `あなたは傾聴アシスタントです。
ユーザーの感情に寄り添い、共感を示すことが役割です。

重要なルール:
- 絶対にアドバイスや解決策を提示しない
- ユーザーの感情を受け止め、共感を言葉にする
- 「〜すべき」「〜したらどうですか」は禁止
- 感情のラベリングを行う（「それは悔しいですよね」「不安になりますよね」）
- 話を聞いている姿勢を明確に示す
- 日本語で応答する

応答パターン例:
- 「それは本当に大変でしたね。」
- 「そう感じるのは当然だと思います。」
- 「話してくれてありがとうございます。」
`

const knowledgeSystemPrompt = `あなたは知識質問に答えるアシスタントです。
ユーザーの「〜とは？」「〜の方法は？」といった質問に答えることが役割です。

方針:
- 正確さを最優先し、確証のない情報は「〜の可能性があります」と明記する
- 専門用語には簡潔な説明を付ける
- 要点を先に、補足を後に
- 日本語で応答する
`

const brainstormSystemPrompt = `あなたは発想支援アシスタントです。
ユーザーのアイデア出し・壁打ちの相手をすることが役割です。

方針:
- 相手のアイデアを否定せず、まず広げる
- 異なる角度からの案を複数提示する
- 「もし〜だったら」という仮説で発想を促す
- 日本語で応答する
`

const deepDiveSystemPrompt = `あなたは課題解決アシスタントです。
ユーザーの課題や問題を深掘りし、構造的に整理・分析することが役割です。

手順:
1. 問題の構造化: 何が本質的な課題なのかを見極める
2. 要因分析: 考えられる原因や要因を洗い出す
3. 選択肢の提示: 複数の解決アプローチを提示する
4. 次のアクション: 具体的な次の一歩を提案する

トーン:
- 論理的で整理された応答
- 箇条書きを活用して視認性を高める
- 「答え」を押し付けるのではなく、思考を促す質問も交える
- 日本語で応答する
`

// Canned fallback replies, one per strategy. Returned verbatim when the
// tier is unavailable or generation fails.
const (
	chatCannedReply       = "なるほど！いいですね。"
	empathyCannedReply    = "お気持ち、受け止めました。話してくれてありがとうございます。"
	knowledgeCannedReply  = "うまく調べられませんでした。少し言い方を変えて、もう一度聞いてもらえますか？"
	brainstormCannedReply = "面白そうですね。どんなアイデアか、もう少し聞かせてください。"
	deepDiveCannedReply   = "課題を整理してみましょう。もう少し詳しく教えていただけますか？"
)

// NewChatStrategy handles casual conversation on the FAST tier.
func NewChatStrategy(resolver Resolver, logger *zap.Logger) Strategy {
	return &baseStrategy{
		name:         "chat",
		tier:         llm.TierFast,
		temperature:  0.7,
		systemPrompt: chatSystemPrompt,
		canned:       chatCannedReply,
		resolver:     resolver,
		logger:       logger,
	}
}

// NewEmpathyStrategy listens without advising, on the FAST tier. The
// no-advice rule is enforced only through the prompt: a soft guarantee.
func NewEmpathyStrategy(resolver Resolver, logger *zap.Logger) Strategy {
	return &baseStrategy{
		name:         "empathy",
		tier:         llm.TierFast,
		temperature:  0.5,
		systemPrompt: empathySystemPrompt,
		canned:       empathyCannedReply,
		resolver:     resolver,
		logger:       logger,
	}
}

// NewKnowledgeStrategy answers factual questions on the FAST tier.
func NewKnowledgeStrategy(resolver Resolver, logger *zap.Logger) Strategy {
	return &baseStrategy{
		name:         "knowledge",
		tier:         llm.TierFast,
		temperature:  0.3,
		systemPrompt: knowledgeSystemPrompt,
		canned:       knowledgeCannedReply,
		resolver:     resolver,
		logger:       logger,
	}
}

// NewBrainstormStrategy runs idea generation on the BALANCED tier.
func NewBrainstormStrategy(resolver Resolver, logger *zap.Logger) Strategy {
	return &baseStrategy{
		name:         "brainstorm",
		tier:         llm.TierBalanced,
		temperature:  0.8,
		systemPrompt: brainstormSystemPrompt,
		canned:       brainstormCannedReply,
		resolver:     resolver,
		logger:       logger,
	}
}

// NewDeepDiveStrategy structures problems on the BALANCED tier.
func NewDeepDiveStrategy(resolver Resolver, logger *zap.Logger) Strategy {
	return &baseStrategy{
		name:         "deep_dive",
		tier:         llm.TierBalanced,
		temperature:  0.4,
		systemPrompt: deepDiveSystemPrompt,
		canned:       deepDiveCannedReply,
		resolver:     resolver,
		logger:       logger,
	}
}
