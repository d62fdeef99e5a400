package models

import (
	"context"

	"FinSight/internal/domain/models"
	"FinSight/pkg/logger"
)

type classifyRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classifier assigns query intents via the sidecar's zero-shot model.
type Classifier struct {
	runner *Runner
	labels []string
}

// NewClassifier creates an intent classifier over the model runner.
func NewClassifier(runner *Runner) *Classifier {
	intents := models.Intents()
	labels := make([]string, len(intents))
	for i, it := range intents {
		labels[i] = string(it)
	}
	return &Classifier{runner: runner, labels: labels}
}

// Classify returns the best-scoring intent. On any failure the first
// label is returned with zero confidence so the caller falls through to
// the AI generation path.
func (c *Classifier) Classify(ctx context.Context, question string) models.IntentResult {
	fallback := models.IntentResult{Intent: models.QueryIntent(c.labels[0]), Confidence: 0}

	var resp classifyResponse
	err := c.runner.post(ctx, "/classify", classifyRequest{Text: question, Labels: c.labels}, &resp)
	if err != nil {
		c.runner.log.Warn("intent classification failed", logger.Error(err))
		return fallback
	}
	if len(resp.Labels) == 0 || len(resp.Scores) == 0 {
		return fallback
	}

	all := make(map[string]float64, len(resp.Labels))
	for i, label := range resp.Labels {
		if i < len(resp.Scores) {
			all[label] = resp.Scores[i]
		}
	}
	return models.IntentResult{
		Intent:     models.QueryIntent(resp.Labels[0]),
		Confidence: resp.Scores[0],
		AllIntents: all,
	}
}
