// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (lengths, ranges,
// required fields) defined in struct tags and extracts validation errors
// into an ordered list of field errors the client can understand.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/deppfellow/usercrud/internal/errs"
	"github.com/deppfellow/usercrud/internal/model"
	"github.com/go-playground/validator/v10"
)

// Payload is a decoded JSON object.
type Payload map[string]any

// CreateUserRequest is the body of the create operation.
type CreateUserRequest struct {
	FullName   *string `json:"full_name" validate:"required,min=3,max=30"`
	Role       *string `json:"role" validate:"required,min=3,max=40"`
	Efficiency *int64  `json:"efficiency" validate:"required,gt=0"`
}

// Fields converts the request into storage fields.
func (r *CreateUserRequest) Fields() model.UserFields {
	return model.UserFields{FullName: r.FullName, Role: r.Role, Efficiency: r.Efficiency}
}

// UpdateUserRequest is the body of the update operation; every field is
// optional.
type UpdateUserRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,min=3,max=30"`
	Role       *string `json:"role" validate:"omitempty,min=3,max=40"`
	Efficiency *int64  `json:"efficiency" validate:"omitempty,gt=0"`
}

// Fields converts the request into storage fields.
func (r *UpdateUserRequest) Fields() model.UserFields {
	return model.UserFields{FullName: r.FullName, Role: r.Role, Efficiency: r.Efficiency}
}

// fieldKind is the JSON type a known field must have.
type fieldKind int

const (
	kindString fieldKind = iota
	kindInteger
)

// knownField is one entry of the allow-list. Anything not listed is dropped.
type knownField struct {
	name string
	kind fieldKind
}

var userSchema = []knownField{
	{name: model.ColumnFullName, kind: kindString},
	{name: model.ColumnRole, kind: kindString},
	{name: model.ColumnEfficiency, kind: kindInteger},
}

// Validator checks user payloads. Build it once with New and share it.
type Validator struct {
	validate *validator.Validate
	order    map[string]int
}

// New builds a Validator that reports fields by their JSON names.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	order := make(map[string]int, len(userSchema))
	for i, f := range userSchema {
		order[f.name] = i
	}

	return &Validator{validate: validate, order: order}
}

// CreateUser validates the body of a create request.
func (v *Validator) CreateUser(payload Payload) (*CreateUserRequest, error) {
	values, typeErrors := decode(payload)

	req := &CreateUserRequest{
		FullName:   values.str(model.ColumnFullName),
		Role:       values.str(model.ColumnRole),
		Efficiency: values.integer(model.ColumnEfficiency),
	}

	if err := v.check(req, typeErrors); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateUser validates the body of an update request.
func (v *Validator) UpdateUser(payload Payload) (*UpdateUserRequest, error) {
	values, typeErrors := decode(payload)

	req := &UpdateUserRequest{
		FullName:   values.str(model.ColumnFullName),
		Role:       values.str(model.ColumnRole),
		Efficiency: values.integer(model.ColumnEfficiency),
	}

	if err := v.check(req, typeErrors); err != nil {
		return nil, err
	}
	return req, nil
}

// check runs the struct tags and merges their violations with the type
// violations found while decoding, in schema order. A field with a type
// violation is reported once.
func (v *Validator) check(req any, typeErrors []errs.FieldError) error {
	fieldErrors := typeErrors

	if err := v.validate.Struct(req); err != nil {
		failed := make(map[string]bool, len(typeErrors))
		for _, fe := range typeErrors {
			failed[fe.Field] = true
		}
		for _, fe := range extractValidationError(err) {
			if !failed[fe.Field] {
				fieldErrors = append(fieldErrors, fe)
			}
		}
	}

	if len(fieldErrors) == 0 {
		return nil
	}

	sortByField(fieldErrors, v.order)
	return errs.NewValidationError("", fieldErrors)
}

// sortByField orders errors by schema position; stable so several errors on
// one field keep their order.
func sortByField(fieldErrors []errs.FieldError, order map[string]int) {
	for i := 1; i < len(fieldErrors); i++ {
		for j := i; j > 0 && order[fieldErrors[j].Field] < order[fieldErrors[j-1].Field]; j-- {
			fieldErrors[j], fieldErrors[j-1] = fieldErrors[j-1], fieldErrors[j]
		}
	}
}

// decoded holds the type-checked values of the known fields.
type decoded struct {
	strings  map[string]string
	integers map[string]int64
}

func (d decoded) str(name string) *string {
	if s, ok := d.strings[name]; ok {
		return &s
	}
	return nil
}

func (d decoded) integer(name string) *int64 {
	if n, ok := d.integers[name]; ok {
		return &n
	}
	return nil
}

// decode keeps the allow-listed fields of payload and checks their JSON
// types. Unknown fields are dropped and null counts as absent.
func decode(payload Payload) (decoded, []errs.FieldError) {
	values := decoded{
		strings:  map[string]string{},
		integers: map[string]int64{},
	}
	var typeErrors []errs.FieldError

	for _, f := range userSchema {
		raw, ok := payload[f.name]
		if !ok || raw == nil {
			continue
		}

		switch f.kind {
		case kindString:
			s, ok := raw.(string)
			if !ok {
				typeErrors = append(typeErrors, errs.FieldError{Field: f.name, Error: "must be a string"})
				continue
			}
			values.strings[f.name] = s

		case kindInteger:
			n, msg := toInteger(raw)
			if msg != "" {
				typeErrors = append(typeErrors, errs.FieldError{Field: f.name, Error: msg})
				continue
			}
			values.integers[f.name] = n
		}
	}

	return values, typeErrors
}

// toInteger accepts JSON numbers with an integral value.
func toInteger(raw any) (int64, string) {
	var f float64
	switch n := raw.(type) {
	case float64:
		f = n
	case int:
		return int64(n), ""
	case int64:
		return n, ""
	default:
		return 0, "must be a number"
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, "must be an integer"
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, "is out of range"
	}
	return int64(f), ""
}

// extractValidationError converts validator errors into field errors.
func extractValidationError(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []errs.FieldError{{Field: "body", Error: err.Error()}}
	}

	for _, err := range validationErrors {
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "gt":
			if err.Param() == "0" {
				msg = "must be a positive number"
			} else {
				msg = fmt.Sprintf("must be greater than %s", err.Param())
			}

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("failed %s:%s", err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("failed %s", err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: err.Field(),
			Error: msg,
		})
	}

	return fieldErrors
}
