package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/usercrud/internal/middleware"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the service and its database are usable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth answers 200 when the database accepts connections and 503
// otherwise. It is outside the user routes and does not use the envelope.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]any)
	body := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	dbStart := time.Now()
	if err := h.server.DB.Authenticate(c.Request().Context()); err != nil {
		checks["database"] = map[string]any{
			"status":        "unhealthy",
			"dialect":       h.server.Config.Database.Dialect,
			"response_time": time.Since(dbStart).String(),
			"error":         err.Error(),
		}
		body["status"] = "unhealthy"

		logger.Error().
			Err(err).
			Dur("response_time", time.Since(dbStart)).
			Msg("database health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]any{
				"check_type":       "database",
				"response_time_ms": time.Since(dbStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		}

		return c.JSON(http.StatusServiceUnavailable, body)
	}

	checks["database"] = map[string]any{
		"status":        "healthy",
		"dialect":       h.server.Config.Database.Dialect,
		"response_time": time.Since(dbStart).String(),
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, body); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}
