package handler

import (
	"context"
	"time"

	"github.com/deppfellow/usercrud/internal/middleware"
	"github.com/deppfellow/usercrud/internal/response"
	"github.com/deppfellow/usercrud/internal/route"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler holds the shared application dependencies of concrete handlers.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// InvokeFunc runs a transport-independent request.
type InvokeFunc func(ctx context.Context, req route.Request) (any, error)

// handleRequest is the execution pipeline shared by the user routes.
//
// It logs the request with the route it matched, records timing and
// outcome on the New Relic transaction and writes the success envelope.
// Errors are returned untouched for the global error handler.
func handleRequest(c echo.Context, rt route.Route, req route.Request, invoke InvokeFunc) error {
	start := time.Now()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", rt.Path)
		txn.AddAttribute("handler.operation", rt.Op.String())
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", rt.Op.String()).
		Str("route", rt.Method+" "+rt.Path).
		Logger()

	if req.PathID != "" {
		logger = logger.With().Str(route.IDParam, req.PathID).Logger()
	}

	logger.Info().Msg("handling request")

	result, err := invoke(c.Request().Context(), req)
	duration := time.Since(start)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", duration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", duration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", duration.Milliseconds())
	}

	logger.Info().
		Dur("handler_duration", duration).
		Msg("request completed successfully")

	env := response.Success(result)
	return c.JSON(response.Status(env), env)
}
