package middleware

import (
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups all middleware components used by the HTTP server.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers, body
	// limit and the global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer stores a request-scoped logger on every request.
	ContextEnhancer *ContextEnhancer

	// Tracing wraps requests in New Relic transactions when the agent runs.
	Tracing *TracingMiddleware
}

// NewMiddlewares constructs all middleware components. Without New Relic the
// tracing middleware degrades into a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(nrApp),
	}
}
