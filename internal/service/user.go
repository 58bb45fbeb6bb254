package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/deppfellow/usercrud/internal/errs"
	"github.com/deppfellow/usercrud/internal/model"
	"github.com/deppfellow/usercrud/internal/route"
	"github.com/deppfellow/usercrud/internal/validation"
)

// Store is the storage the user service needs.
type Store interface {
	Create(ctx context.Context, fields model.UserFields) (int64, error)
	List(ctx context.Context, filter model.Filter) ([]model.User, error)
	UpdateByID(ctx context.Context, id int64, fields model.UserFields) (*model.User, error)
	DeleteByID(ctx context.Context, id int64) (*model.User, error)
}

// Authenticator verifies the backend is reachable before any work is done.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// CreateResult is the result of a create.
type CreateResult struct {
	ID int64 `json:"id"`
}

// ListResult is the result of a list.
type ListResult struct {
	Users []model.User `json:"users"`
}

// Empty is the result of an update or delete that found no user.
// It encodes as {}.
type Empty struct{}

type UserService struct {
	auth      Authenticator
	store     Store
	router    *route.Router
	validator *validation.Validator
}

func NewUserService(auth Authenticator, store Store, router *route.Router, validator *validation.Validator) *UserService {
	return &UserService{
		auth:      auth,
		store:     store,
		router:    router,
		validator: validator,
	}
}

// Handle runs one request: authenticate, route, validate, dispatch.
//
// The returned result is one of CreateResult, ListResult, *model.User,
// Empty, or nil for delete-all (no result is reported).
func (s *UserService) Handle(ctx context.Context, req route.Request) (any, error) {
	if err := s.auth.Authenticate(ctx); err != nil {
		return nil, err
	}

	rt, err := s.router.Match(req.Method, req.Path)
	if err != nil {
		return nil, err
	}

	var id int64
	if rt.HasID {
		if id, err = ParseID(req.PathID); err != nil {
			return nil, err
		}
	}

	switch rt.Op {
	case route.OpCreate:
		return s.Create(ctx, req.Body)

	case route.OpList:
		filter, err := ParseFilter(req.Query)
		if err != nil {
			return nil, err
		}
		if rt.HasID {
			filter[model.ColumnID] = id
		}
		return s.List(ctx, filter)

	case route.OpUpdate:
		return s.Update(ctx, id, req.Body)

	case route.OpDelete:
		return s.Delete(ctx, id)
	}

	return nil, errs.NewNotFoundError("No route for " + req.Method + " " + req.Path)
}

// Create validates body and inserts a user.
func (s *UserService) Create(ctx context.Context, body map[string]any) (CreateResult, error) {
	req, err := s.validator.CreateUser(body)
	if err != nil {
		return CreateResult{}, err
	}

	id, err := s.store.Create(ctx, req.Fields())
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{ID: id}, nil
}

// List returns the users matching filter.
func (s *UserService) List(ctx context.Context, filter model.Filter) (ListResult, error) {
	users, err := s.store.List(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Users: users}, nil
}

// Update validates body and applies it to the user with id.
func (s *UserService) Update(ctx context.Context, id int64, body map[string]any) (any, error) {
	req, err := s.validator.UpdateUser(body)
	if err != nil {
		return nil, err
	}

	user, err := s.store.UpdateByID(ctx, id, req.Fields())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return Empty{}, nil
	}
	return user, nil
}

// Delete removes the user with id, or every user when id is 0.
func (s *UserService) Delete(ctx context.Context, id int64) (any, error) {
	user, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	if user == nil {
		return Empty{}, nil
	}
	return user, nil
}

// ParseID parses a path id. Only positive integers are ids.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewValidationError("", []errs.FieldError{{
			Field: route.IDParam,
			Error: "must be a positive integer",
		}})
	}
	return id, nil
}

// ParseFilter turns query parameters into an equality filter.
//
// Only table columns are kept. id and efficiency must be integers.
func ParseFilter(query map[string]string) (model.Filter, error) {
	filter := model.Filter{}
	var fieldErrors []errs.FieldError

	for _, column := range model.Columns {
		raw, ok := query[column]
		if !ok {
			continue
		}

		switch column {
		case model.ColumnID, model.ColumnEfficiency:
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				fieldErrors = append(fieldErrors, errs.FieldError{Field: column, Error: "must be an integer"})
				continue
			}
			filter[column] = n
		default:
			filter[column] = raw
		}
	}

	if len(fieldErrors) > 0 {
		return nil, errs.NewValidationError("", fieldErrors)
	}
	return filter, nil
}
