package respond

import (
	"context"

	"go.uber.org/zap"

	"haven/internal/intent"
)

// Classifier determines an input's intent. Satisfied by *intent.Classifier.
type Classifier interface {
	Classify(ctx context.Context, inputText string) intent.ClassificationResult
}

// Result is a completed response cycle.
type Result struct {
	Response   string
	Intent     intent.Intent
	Confidence float64
}

// Router is the intent state machine: a classification result is the only
// transition trigger, and each cycle is stateless with respect to prior
// cycles.
type Router struct {
	classifier Classifier
	logger     *zap.Logger

	chat         Strategy
	empathy      Strategy
	knowledge    Strategy
	deepDive     Strategy
	brainstorm   Strategy
	deepResearch Strategy
}

// NewRouter wires the classifier and the full strategy set.
func NewRouter(classifier Classifier, resolver Resolver, logger *zap.Logger) *Router {
	return &Router{
		classifier:   classifier,
		logger:       logger,
		chat:         NewChatStrategy(resolver, logger),
		empathy:      NewEmpathyStrategy(resolver, logger),
		knowledge:    NewKnowledgeStrategy(resolver, logger),
		deepDive:     NewDeepDiveStrategy(resolver, logger),
		brainstorm:   NewBrainstormStrategy(resolver, logger),
		deepResearch: NewDeepResearchStrategy(resolver, logger),
	}
}

// Respond classifies the input and dispatches to exactly one strategy.
func (r *Router) Respond(ctx context.Context, req Request) Result {
	classification := r.classifier.Classify(ctx, req.Input)

	r.logger.Debug("intent classified",
		zap.String("intent", string(classification.Intent)),
		zap.Float64("confidence", classification.Confidence))

	var strategy Strategy
	switch classification.Intent {
	case intent.IntentEmpathy:
		strategy = r.empathy
	case intent.IntentKnowledge:
		strategy = r.knowledge
	case intent.IntentDeepDive:
		strategy = r.deepDive
	case intent.IntentBrainstorm:
		strategy = r.brainstorm
	case intent.IntentChat, intent.IntentState:
		// State entries are assigned by ingestion and carry no distinct
		// response behavior; they take the casual path.
		strategy = r.chat
	default:
		strategy = r.chat
	}

	return Result{
		Response:   strategy.Run(ctx, req),
		Intent:     classification.Intent,
		Confidence: classification.Confidence,
	}
}

// DeepResearch invokes the deep-research strategy directly, bypassing
// classification. Callers pass the original query as Input and the prior
// reply as PriorResponse.
func (r *Router) DeepResearch(ctx context.Context, req Request) string {
	return r.deepResearch.Run(ctx, req)
}
