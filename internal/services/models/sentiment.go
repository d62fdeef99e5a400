package models

import (
	"context"

	"FinSight/internal/domain/models"
	"FinSight/pkg/logger"
)

type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Sentiment grades financial text via the sidecar's sentiment model.
type Sentiment struct {
	runner *Runner
}

// NewSentiment creates a sentiment scorer over the model runner.
func NewSentiment(runner *Runner) *Sentiment {
	return &Sentiment{runner: runner}
}

// Score returns the sentiment verdict, neutral on any failure.
func (s *Sentiment) Score(ctx context.Context, text string) models.SentimentResult {
	var resp sentimentResponse
	if err := s.runner.post(ctx, "/sentiment", sentimentRequest{Text: text}, &resp); err != nil {
		s.runner.log.Warn("sentiment scoring failed", logger.Error(err))
		return models.NeutralSentiment()
	}
	if resp.Label == "" {
		return models.NeutralSentiment()
	}
	return models.SentimentResult{
		Label:      resp.Label,
		Score:      resp.Score,
		Confidence: models.RelevanceFromSimilarity(resp.Score),
	}
}
