package api

import "github.com/labstack/echo/v4"

// Router combines the API handlers into one route registrar.
type Router struct {
	query    *QueryHandler
	analysis *AnalysisHandler
	alerts   *AlertHub
}

// NewRouter creates the combined API router.
func NewRouter(query *QueryHandler, analysis *AnalysisHandler, alerts *AlertHub) *Router {
	return &Router{query: query, analysis: analysis, alerts: alerts}
}

// RegisterRoutes registers every API endpoint.
func (r *Router) RegisterRoutes(e *echo.Echo) {
	r.query.RegisterRoutes(e)
	r.analysis.RegisterRoutes(e)
	r.alerts.RegisterRoutes(e)
}
