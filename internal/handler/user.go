package handler

import (
	"io"

	"github.com/deppfellow/usercrud/internal/route"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/deppfellow/usercrud/internal/service"
	"github.com/labstack/echo/v4"
)

// UserHandler serves the routes of the route table.
type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

// Serve returns the echo handler of rt.
func (h *UserHandler) Serve(rt route.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := NewRequest(c, rt)
		if err != nil {
			return err
		}
		return handleRequest(c, rt, req, h.users.Handle)
	}
}

// NewRequest converts an echo request matched to rt.
//
// Only the first value of a repeated query parameter is kept. A body that
// is not a JSON object is treated as {}.
func NewRequest(c echo.Context, rt route.Route) (route.Request, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return route.Request{}, err
	}

	query := make(map[string]string)
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	req := route.Request{
		Method: rt.Method,
		Path:   rt.Path,
		Query:  query,
		Body:   route.ParseBody(raw),
	}
	if rt.HasID {
		req.PathID = c.Param(route.IDParam)
	}
	return req, nil
}
