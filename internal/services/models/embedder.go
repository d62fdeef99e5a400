package models

import (
	"context"
	"fmt"
)

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embedder produces fixed-dimension text embeddings via the sidecar.
// Unlike the classifier and sentiment scorer it surfaces errors: an index
// write with a garbage vector is worse than no write.
type Embedder struct {
	runner *Runner
}

// NewEmbedder creates an embedder over the model runner.
func NewEmbedder(runner *Runner) *Embedder {
	return &Embedder{runner: runner}
}

// Embed returns the embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	if err := e.runner.post(ctx, "/embed", embedRequest{Text: text}, &resp); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Embedding) != e.runner.dim {
		return nil, fmt.Errorf("embed: expected %d dimensions, got %d", e.runner.dim, len(resp.Embedding))
	}
	return resp.Embedding, nil
}

// Dimensions returns the embedding dimensionality.
func (e *Embedder) Dimensions() int {
	return e.runner.dim
}
