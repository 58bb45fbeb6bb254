// Package cloudfn runs the user endpoint as a serverless function.
//
// The function receives an API gateway event that already names the
// matched route template, e.g. /get/{user_id}, with the path parameters
// extracted, and answers with a status/headers/body triple.
package cloudfn

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deppfellow/usercrud/internal/errs"
	"github.com/deppfellow/usercrud/internal/response"
	"github.com/deppfellow/usercrud/internal/route"
	"github.com/rs/zerolog"
)

// Event is the inbound gateway event.
type Event struct {
	HTTPMethod string `json:"httpMethod"`
	// Path is the route template the gateway matched.
	Path                  string            `json:"path"`
	Headers               map[string]string `json:"headers,omitempty"`
	Params                map[string]string `json:"params,omitempty"`
	QueryStringParameters map[string]string `json:"queryStringParameters,omitempty"`
	Body                  string            `json:"body,omitempty"`
	IsBase64Encoded       bool              `json:"isBase64Encoded"`
}

// Response is what the gateway sends back to the caller.
type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// Invoker runs a transport-independent request.
type Invoker interface {
	Handle(ctx context.Context, req route.Request) (any, error)
}

// Function adapts gateway events to an Invoker.
type Function struct {
	users  Invoker
	logger zerolog.Logger
}

func New(users Invoker, logger zerolog.Logger) *Function {
	return &Function{
		users:  users,
		logger: logger.With().Str("component", "cloudfn").Logger(),
	}
}

// Request converts an event. A body that cannot be decoded is treated as {}.
func (e *Event) Request() route.Request {
	raw := []byte(e.Body)
	if e.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(e.Body)
		if err != nil {
			decoded = nil
		}
		raw = decoded
	}

	query := e.QueryStringParameters
	if query == nil {
		query = map[string]string{}
	}

	return route.Request{
		Method: e.HTTPMethod,
		Path:   e.Path,
		PathID: e.Params[route.IDParam],
		Query:  query,
		Body:   route.ParseBody(raw),
	}
}

// Handle answers one event. Failures, panics included, become a failure
// envelope; Handle itself never fails.
func (f *Function) Handle(ctx context.Context, event *Event) (resp *Response) {
	start := time.Now()
	logger := f.logger.With().
		Str("method", event.HTTPMethod).
		Str("path", event.Path).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			err := errs.NewInternalServerError(fmt.Errorf("panic: %v", r))
			logger.Error().Err(err.Unwrap()).Msg("function panicked")
			resp = render(response.Failure(err))
		}
	}()

	result, err := f.users.Handle(ctx, event.Request())
	if err != nil {
		logger.Error().
			Err(err).
			Str("error_kind", errs.KindOf(err).String()).
			Dur("duration", time.Since(start)).
			Msg("request failed")
		return render(response.Failure(err))
	}

	logger.Info().
		Dur("duration", time.Since(start)).
		Msg("request completed successfully")
	return render(response.Success(result))
}

func render(env response.Envelope) *Response {
	body, err := json.Marshal(env)
	if err != nil {
		env = response.Failure(errs.NewInternalServerError(err))
		body, _ = json.Marshal(env)
	}

	return &Response{
		StatusCode: response.Status(env),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body:            string(body),
		IsBase64Encoded: false,
	}
}
