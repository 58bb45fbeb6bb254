package handler

import (
	"github.com/deppfellow/usercrud/internal/route"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/deppfellow/usercrud/internal/service"
)

// Handlers groups all HTTP handlers.
type Handlers struct {
	Users   *UserHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Users:   NewUserHandler(s, services.Users),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s, route.Routes),
	}
}
