package service

import (
	"context"

	"FinSight/internal/domain/models"
)

// IntentClassifier assigns an intent label to a question. Implementations
// degrade to the first label with zero confidence instead of erroring.
type IntentClassifier interface {
	Classify(ctx context.Context, question string) models.IntentResult
}

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// SentimentScorer grades text sentiment, neutral on failure.
type SentimentScorer interface {
	Score(ctx context.Context, text string) models.SentimentResult
}

// Reasoner is the remote text-generation model. All methods return
// ok=false when the model is unavailable, rate-limited, or fails; callers
// are expected to carry on without it.
type Reasoner interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, bool)
	GenerateSQL(ctx context.Context, question, schemaContext string) (string, bool)
	ExplainPattern(ctx context.Context, description, marketContext string) (string, bool)
	Available() bool
	Usage() models.UsageStats
}
