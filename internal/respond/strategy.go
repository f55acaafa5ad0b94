// Package respond routes classified input to a response strategy and
// produces the user-facing reply.
//
// Every strategy degrades to a fixed canned reply when its tier is
// unavailable or generation fails; no failure propagates to the caller.
package respond

import (
	"context"

	"go.uber.org/zap"

	"haven/internal/llm"
)

// Request carries one response cycle's input. PriorResponse is only set for
// deep-research follow-ups; ProfileSummary, when present, is injected into
// the strategy prompt as read-only user context.
type Request struct {
	Input          string
	PriorResponse  string
	ProfileSummary string
}

// Strategy produces a reply for a request. Implementations never fail.
type Strategy interface {
	Run(ctx context.Context, req Request) string
}

// Resolver yields a client for a tier. Satisfied by *llm.Resolver.
type Resolver interface {
	Resolve(tier llm.Tier) (llm.Client, error)
}

// baseStrategy is the shared shape of the primary strategies: a fixed tier,
// system prompt, temperature and canned fallback reply.
type baseStrategy struct {
	name         string
	tier         llm.Tier
	temperature  float64
	systemPrompt string
	canned       string

	resolver Resolver
	logger   *zap.Logger
}

// Run generates a reply, falling back to the canned response on any failure.
func (s *baseStrategy) Run(ctx context.Context, req Request) string {
	client, err := s.resolver.Resolve(s.tier)
	if err != nil {
		return s.canned
	}
	if err := client.Initialize(ctx); err != nil {
		s.logger.Warn("strategy client init failed",
			zap.String("strategy", s.name), zap.Error(err))
		return s.canned
	}

	resp, err := client.GenerateText(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: withProfileContext(s.systemPrompt, req.ProfileSummary)},
		{Role: llm.RoleUser, Content: req.Input},
	}, llm.GenerateOptions{Temperature: s.temperature})
	if err != nil {
		s.logger.Warn("strategy generation failed",
			zap.String("strategy", s.name), zap.Error(err))
		return s.canned
	}
	return resp.Content
}

// withProfileContext appends the profile summary to the system prompt so the
// model can personalize without the summary ever steering the role itself.
func withProfileContext(systemPrompt, summary string) string {
	if summary == "" {
		return systemPrompt
	}
	return systemPrompt + "\n\n## ユーザーの最近の傾向（参考情報）\n" + summary
}
