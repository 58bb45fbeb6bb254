// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares, the user routes of the route table and the
// system routes.
package router

import (
	"github.com/deppfellow/usercrud/internal/handler"
	"github.com/deppfellow/usercrud/internal/middleware"
	"github.com/deppfellow/usercrud/internal/route"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance serving table.
func NewRouter(s *server.Server, h *handler.Handlers, table []route.Route) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(router, h)
	registerUserRoutes(router, h, table)

	return router
}

func registerUserRoutes(r *echo.Echo, h *handler.Handlers, table []route.Route) {
	for _, rt := range table {
		r.Add(rt.Method, rt.EchoPath(), h.Users.Serve(rt))
	}
}
