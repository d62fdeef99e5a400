package api

import (
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/service/metrics"
	"FinSight/internal/service/ratelimit"
	"FinSight/internal/usecase"
	xhttp "FinSight/pkg/http"
	xlogger "FinSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// QueryHandler serves the natural-language query and reasoner usage
// endpoints.
type QueryHandler struct {
	analyzer *usecase.Analyzer
	rl       *ratelimit.Limiter
	logger   *xlogger.Logger
}

// NewQueryHandler creates the query handler.
func NewQueryHandler(analyzer *usecase.Analyzer, logger *xlogger.Logger) *QueryHandler {
	metrics.Register()
	return &QueryHandler{analyzer: analyzer, rl: ratelimit.New(), logger: logger}
}

// RegisterRoutes registers the query endpoints.
func (h *QueryHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/query", h.Query)
	g.GET("/usage", h.Usage)
}

// Query answers a natural-language question against the warehouse.
func (h *QueryHandler) Query(c echo.Context) error {
	start := time.Now()
	endpoint := "query"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.QueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.rl.Allow(c.RealIP()+":query", 5, 1) {
		metrics.RateLimited.WithLabelValues(endpoint).Inc()
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	useAI := req.UseAI == nil || *req.UseAI
	res := h.analyzer.Insight(c.Request().Context(), req.Question, req.Limit, useAI)
	if !res.Success {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
	}
	return xhttp.SuccessResponse(c, res)
}

// Usage reports remote reasoner consumption against its caps.
func (h *QueryHandler) Usage(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.analyzer.Usage())
}
