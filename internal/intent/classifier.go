package intent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"haven/internal/llm"
)

const classifyTemperature = 0.1

// Confidence constants for the fallback path. The fallback is bounded below
// the LLM path's ceiling to reflect lower reliability.
const (
	noSignalConfidence    = 0.3
	defaultLLMConfidence  = 0.5
	fallbackConfidenceCap = 0.7
)

const systemPrompt = `あなたはユーザー入力の意図分類器です。
入力テキストを以下の5カテゴリのいずれかに分類してください。

カテゴリ:
- "chat": 雑談、挨拶、日常会話、特に目的のない会話
- "empathy": 感情的な表現、愚痴、不満、悩み、共感を求めている
- "knowledge": 知識や情報を求めている質問、「〜とは？」「〜の方法は？」
- "deep_dive": 具体的な課題や問題の解決を求めている、分析・整理したい
- "brainstorm": アイデア出し、仮説検証、壁打ち、創造的な発想を求めている

必ず以下のJSON形式で応答してください:
{
    "intent": "chat" | "empathy" | "knowledge" | "deep_dive" | "brainstorm",
    "confidence": 0.0〜1.0
}`

// Resolver yields a client for a tier. Satisfied by *llm.Resolver.
type Resolver interface {
	Resolve(tier llm.Tier) (llm.Client, error)
}

// Classifier maps input text to an intent plus a confidence score.
type Classifier struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewClassifier creates a Classifier. The resolver may yield no FAST client;
// classification then runs entirely on the keyword fallback.
func NewClassifier(resolver Resolver, logger *zap.Logger) *Classifier {
	return &Classifier{resolver: resolver, logger: logger}
}

// Classify determines the intent of the input text. It never fails; any
// internal error degrades to the keyword fallback.
func (c *Classifier) Classify(ctx context.Context, inputText string) ClassificationResult {
	client, err := c.resolver.Resolve(llm.TierFast)
	if err != nil {
		return c.fallbackClassify(inputText)
	}

	if err := client.Initialize(ctx); err != nil {
		c.logger.Warn("intent classifier init failed, using fallback", zap.Error(err))
		return c.fallbackClassify(inputText)
	}

	result, err := client.GenerateJSON(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: inputText},
	}, classifyTemperature)
	if err != nil {
		c.logger.Warn("intent classification via LLM failed, using fallback", zap.Error(err))
		return c.fallbackClassify(inputText)
	}

	return parseResult(result)
}

// parseResult converts the model's JSON verdict into a ClassificationResult.
// Unknown intents default to chat; confidence is clamped to [0,1] and
// defaults to 0.5 when absent or non-numeric.
func parseResult(result map[string]any) ClassificationResult {
	intentStr, _ := result["intent"].(string)
	parsed := ParseIntent(strings.ToLower(strings.TrimSpace(intentStr)))
	if parsed == IntentState {
		// The model is never asked to produce state.
		parsed = IntentChat
	}

	confidence := defaultLLMConfidence
	switch v := result["confidence"].(type) {
	case float64:
		confidence = v
	case int:
		confidence = float64(v)
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return ClassificationResult{Intent: parsed, Confidence: confidence}
}

// fallbackClassify scores each category by literal keyword matches.
func (c *Classifier) fallbackClassify(inputText string) ClassificationResult {
	scores := make(map[Intent]float64, len(classifiable))
	total := 0.0

	for _, category := range classifiable {
		for _, kw := range keywordMap[category] {
			if strings.Contains(inputText, kw) {
				scores[category]++
				total++
			}
		}
	}

	// Stable max search in enumeration order; first match wins ties.
	var winner Intent
	var winning float64
	for _, category := range classifiable {
		if scores[category] > winning {
			winner = category
			winning = scores[category]
		}
	}

	if winning == 0 {
		return ClassificationResult{Intent: IntentChat, Confidence: noSignalConfidence}
	}

	confidence := winning / total
	if confidence > fallbackConfidenceCap {
		confidence = fallbackConfidenceCap
	}
	return ClassificationResult{Intent: winner, Confidence: confidence}
}
