package models

import (
	"context"
	"time"

	xhttp "FinSight/pkg/http"
	"FinSight/pkg/logger"
)

// Runner talks to the local model sidecar (embeddings, sentiment,
// zero-shot classification). Every caller treats the sidecar as best
// effort; failures are logged and degrade to defaults at the call site.
type Runner struct {
	baseURL string
	client  *xhttp.Client
	log     *logger.Logger
	dim     int
}

// NewRunner creates a model sidecar client.
func NewRunner(baseURL string, timeout time.Duration, embeddingDim int, log *logger.Logger) *Runner {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if embeddingDim <= 0 {
		embeddingDim = 384
	}
	return &Runner{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		log:     log,
		dim:     embeddingDim,
	}
}

func (r *Runner) post(ctx context.Context, path string, body, dest interface{}) error {
	return r.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    r.baseURL + path,
		Body:   body,
	}, dest)
}
