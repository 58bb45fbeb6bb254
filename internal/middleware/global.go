package middleware

import (
	"net/http"

	"github.com/deppfellow/usercrud/internal/errs"
	"github.com/deppfellow/usercrud/internal/response"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/deppfellow/usercrud/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups the middleware applied to every route and the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS allows the configured origins. With none configured echo's default
// (any origin) applies.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
	})
}

// BodyLimit rejects bodies above server.body_limit, e.g. "1M".
func (global *GlobalMiddlewares) BodyLimit() echo.MiddlewareFunc {
	return middleware.BodyLimit(global.server.Config.Server.BodyLimit)
}

// RequestLogger writes one "API" line per request.
//
// Errors returned by handlers have not been rendered yet when the line is
// written, so their status is taken from the error: every failure is a 500.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status
			if v.Error != nil {
				statusCode = http.StatusInternalServerError
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error).Str("error_kind", errs.KindOf(v.Error).String())
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns panics into errors handled by GlobalErrorHandler.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the final error funnel of the HTTP server.
//
// Every error becomes a failure envelope with status 500. Echo's own
// 404/405 become a not-found error, anything that is not yet an *errs.Error
// goes through sqlerr.HandleError.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var appErr *errs.Error
	if !errors.As(err, &appErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			err = fromEchoError(echoErr, c)
		} else {
			err = sqlerr.HandleError(err)
		}
		errors.As(err, &appErr)
	}

	logger := *GetLogger(c)

	event := logger.Error()
	if appErr != nil && appErr.Kind != errs.KindInternal {
		event = logger.Warn()
	}

	kind := errs.KindOf(err)
	event.Stack().
		Err(originalErr).
		Str("error_kind", kind.String()).
		Str("error_code", appErr.Code).
		Msg(appErr.Message)

	if !c.Response().Committed {
		env := response.Failure(err)
		_ = c.JSON(response.Status(env), env)
	}
}

// fromEchoError maps errors raised by echo itself.
func fromEchoError(echoErr *echo.HTTPError, c echo.Context) *errs.Error {
	switch echoErr.Code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return errs.NewNotFoundError("No route for " + c.Request().Method + " " + c.Request().URL.Path)
	case http.StatusRequestEntityTooLarge:
		return errs.NewValidationError("Request body is too large", nil)
	}

	message := http.StatusText(echoErr.Code)
	if msg, ok := echoErr.Message.(string); ok && msg != "" {
		message = msg
	}
	return errs.NewInternalServerError(echoErr).WithMessage(message)
}
