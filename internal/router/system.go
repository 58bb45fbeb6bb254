package router

import (
	"github.com/deppfellow/usercrud/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints that are not user routes.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.GET("/docs", h.OpenAPI.ServeOpenAPISpec)
}
