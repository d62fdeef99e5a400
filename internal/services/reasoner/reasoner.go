package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/service/cache"
	"FinSight/internal/service/ratelimit"
	xhttp "FinSight/pkg/http"
	"FinSight/pkg/logger"
)

const modelLoadingWait = 20 * time.Second

// Options configures the remote reasoner.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	CacheTTL    time.Duration
	Temperature float64
	TopP        float64
}

// Reasoner calls the Hugging Face Inference API for text generation.
// Every answer is best effort: rate limits, timeouts, and transport
// failures all surface as ok=false and the caller degrades.
type Reasoner struct {
	opts    Options
	client  *xhttp.Client
	limiter *ratelimit.UsageLimiter
	cache   *cache.TTLCache
	metrics repository.Metrics
	log     *logger.Logger

	// sleep is swapped out in tests so the 503 retry path does not stall.
	sleep func(time.Duration)
}

// New creates a reasoner. The usage limiter is shared so the usage
// endpoint reports the same counters the reasoner consumes.
func New(opts Options, limiter *ratelimit.UsageLimiter, metrics repository.Metrics, log *logger.Logger) *Reasoner {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &Reasoner{
		opts:    opts,
		client:  xhttp.NewClient(xhttp.WithTimeout(opts.Timeout)),
		limiter: limiter,
		cache:   cache.NewTTLCache(),
		metrics: metrics,
		log:     log,
		sleep:   time.Sleep,
	}
}

// WithSleep overrides the retry sleep.
func (r *Reasoner) WithSleep(sleep func(time.Duration)) *Reasoner {
	r.sleep = sleep
	return r
}

// Available reports whether the remote model can be called at all.
func (r *Reasoner) Available() bool {
	return r.opts.APIKey != ""
}

// Usage snapshots reasoner consumption.
func (r *Reasoner) Usage() models.UsageStats {
	stats := r.limiter.Stats()
	stats.Available = r.Available()
	return stats
}

type generateParams struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
	DoSample       bool    `json:"do_sample"`
}

type generateRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters generateParams `json:"parameters"`
}

type generateResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// Generate completes a prompt. Cached answers are served without
// touching the network; counters are only advanced on successful calls.
func (r *Reasoner) Generate(ctx context.Context, prompt string, maxTokens int) (string, bool) {
	if !r.Available() {
		return "", false
	}

	key := cacheKey(prompt, maxTokens, r.opts.Temperature)
	if v, ok := r.cache.Get(key); ok {
		r.metrics.RecordReasonerCall("cache_hit")
		return v.(string), true
	}

	wait, err := r.limiter.Acquire()
	if err != nil {
		r.log.Warn("reasoner rate limit exceeded", logger.Error(err))
		r.metrics.RecordReasonerCall("rate_limited")
		return "", false
	}
	if wait > 0 {
		r.sleep(wait)
	}

	payload := generateRequest{
		Inputs: prompt,
		Parameters: generateParams{
			MaxNewTokens:   maxTokens,
			Temperature:    r.opts.Temperature,
			TopP:           r.opts.TopP,
			ReturnFullText: false,
			DoSample:       true,
		},
	}

	text, err := r.call(ctx, payload)
	if err != nil {
		r.log.Error("reasoner request failed", logger.Error(err))
		r.metrics.RecordReasonerCall("error")
		return "", false
	}

	r.limiter.Commit()
	r.metrics.RecordReasonerCall("success")
	if text != "" {
		r.cache.Set(key, text, r.opts.CacheTTL)
	}
	return text, true
}

func (r *Reasoner) call(ctx context.Context, payload generateRequest) (string, error) {
	resp, err := r.send(ctx, payload)
	if err != nil {
		return "", err
	}

	// 503 means the hosted model is still loading; wait and retry once.
	if resp.StatusCode == http.StatusServiceUnavailable {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		r.log.Info("remote model is loading, retrying", logger.Duration("wait", modelLoadingWait))
		r.sleep(modelLoadingWait)
		resp, err = r.send(ctx, payload)
		if err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return out[0].GeneratedText, nil
}

func (r *Reasoner) send(ctx context.Context, payload generateRequest) (*http.Response, error) {
	return r.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/%s", r.opts.BaseURL, r.opts.Model),
		Headers: map[string]string{
			"Authorization": "Bearer " + r.opts.APIKey,
			"Content-Type":  "application/json",
		},
		Body: payload,
	})
}

// GenerateSQL produces a warehouse query for a natural-language question.
func (r *Reasoner) GenerateSQL(ctx context.Context, question, schemaContext string) (string, bool) {
	text, ok := r.Generate(ctx, sqlPrompt(question, schemaContext), 300)
	if !ok || text == "" {
		return "", false
	}
	return CleanSQL(text), true
}

// ExplainPattern produces a short analyst explanation of a market pattern.
func (r *Reasoner) ExplainPattern(ctx context.Context, description, marketContext string) (string, bool) {
	text, ok := r.Generate(ctx, explainPrompt(description, marketContext), 200)
	if !ok || text == "" {
		return "", false
	}
	return CleanExplanation(text), true
}

// ClearCache drops all cached completions.
func (r *Reasoner) ClearCache() {
	r.cache = cache.NewTTLCache()
}

func cacheKey(prompt string, maxTokens int, temperature float64) string {
	p := prompt
	if len(p) > 100 {
		p = p[:100]
	}
	return fmt.Sprintf("%s_%d_%g", p, maxTokens, temperature)
}
