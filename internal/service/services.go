// Package service contains the business logic.
//
// It sits between the transports and the repository layer: it receives a
// transport-independent request, checks the backend, resolves the route,
// validates the body and calls the repository.
package service

import (
	"github.com/deppfellow/usercrud/internal/repository"
	"github.com/deppfellow/usercrud/internal/route"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/deppfellow/usercrud/internal/validation"
)

type Services struct {
	Users *UserService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Users: NewUserService(s.DB, repos.Users, route.Default(), validation.New()),
	}
}
