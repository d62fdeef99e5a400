package api

import (
	"encoding/json"
	"time"

	"FinSight/internal/domain/models"
	icache "FinSight/internal/service/cache"
	"FinSight/internal/service/metrics"
	"FinSight/internal/service/ratelimit"
	"FinSight/internal/usecase"
	pkgcache "FinSight/pkg/cache"
	xhttp "FinSight/pkg/http"
	xlogger "FinSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisHandler serves the anomaly, market, asset, and recommendation
// endpoints. GET responses are cached briefly: the marts behind them
// refresh daily, so even a short TTL absorbs most of the fan-in.
type AnalysisHandler struct {
	analyzer *usecase.Analyzer
	cache    icache.BytesCache
	cacheTTL time.Duration
	rl       *ratelimit.Limiter
	logger   *xlogger.Logger
}

// NewAnalysisHandler creates the analysis handler.
func NewAnalysisHandler(analyzer *usecase.Analyzer, logger *xlogger.Logger) *AnalysisHandler {
	metrics.Register()
	return &AnalysisHandler{
		analyzer: analyzer,
		cacheTTL: 30 * time.Second,
		rl:       ratelimit.New(),
		logger:   logger,
	}
}

// SetCache injects a response cache.
func (h *AnalysisHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.cacheTTL = ttl
	}
}

// RegisterRoutes registers the analysis endpoints.
func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/anomalies", h.Anomalies)
	g.GET("/market", h.Market)
	g.GET("/asset", h.Asset)
	g.GET("/recommendations", h.Recommendations)
}

// Anomalies runs the trailing-window anomaly scan.
func (h *AnalysisHandler) Anomalies(c echo.Context) error {
	start := time.Now()
	endpoint := "anomalies"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AnomaliesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":anomalies", 5, 1) {
		metrics.RateLimited.WithLabelValues(endpoint).Inc()
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	key := pkgcache.GenerateKeyWithParams("anomalies", req.Days)
	if res, ok := h.cached(key); ok {
		return xhttp.SuccessResponse(c, res)
	}

	report := h.analyzer.ScanAnomalies(c.Request().Context(), req.Days)
	if !report.Success {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
	}
	h.store(key, report)
	return xhttp.SuccessResponse(c, report)
}

// Market summarises current market conditions.
func (h *AnalysisHandler) Market(c echo.Context) error {
	start := time.Now()
	endpoint := "market"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":market", 5, 1) {
		metrics.RateLimited.WithLabelValues(endpoint).Inc()
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	marketKey := pkgcache.GenerateKey("market", "latest")
	if res, ok := h.cached(marketKey); ok {
		return xhttp.SuccessResponse(c, res)
	}

	conditions := h.analyzer.MarketConditions(c.Request().Context())
	if !conditions.Success {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
	}
	h.store(marketKey, conditions)
	return xhttp.SuccessResponse(c, conditions)
}

// Asset analyses a single asset's trailing performance.
func (h *AnalysisHandler) Asset(c echo.Context) error {
	start := time.Now()
	endpoint := "asset"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AssetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":asset", 5, 1) {
		metrics.RateLimited.WithLabelValues(endpoint).Inc()
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	key := pkgcache.GenerateKeyWithParams("asset", req.Symbol, req.Days)
	if res, ok := h.cached(key); ok {
		return xhttp.SuccessResponse(c, res)
	}

	perf := h.analyzer.AssetPerformance(c.Request().Context(), req.Symbol, req.Days)
	if !perf.Success {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
	}
	h.store(key, perf)
	return xhttp.SuccessResponse(c, perf)
}

// Recommendations derives rule-based suggestions from market conditions.
func (h *AnalysisHandler) Recommendations(c echo.Context) error {
	start := time.Now()
	endpoint := "recommendations"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.RecommendationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":recommendations", 5, 1) {
		metrics.RateLimited.WithLabelValues(endpoint).Inc()
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	key := pkgcache.GenerateKeyWithParams("recommendations", req.Days)
	if res, ok := h.cached(key); ok {
		return xhttp.SuccessResponse(c, res)
	}

	recs := h.analyzer.Recommendations(c.Request().Context(), req.Days)
	if !recs.Success {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
	}
	h.store(key, recs)
	return xhttp.SuccessResponse(c, recs)
}

// cached returns a previously stored response as raw JSON.
func (h *AnalysisHandler) cached(key string) (json.RawMessage, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("response cache get failed", xlogger.Error(err), xlogger.String("key", key))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return json.RawMessage(b), true
}

func (h *AnalysisHandler) store(key string, v interface{}) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, h.cacheTTL); err != nil {
		h.logger.Warn("response cache set failed", xlogger.Error(err), xlogger.String("key", key))
	}
}
