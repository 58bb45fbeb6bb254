// Package route holds the route table of the user endpoint.
//
// The table is an enumerated list of method + path templates built once at
// startup. The same table is matched directly for serverless invocations
// and registered on echo for the HTTP server.
package route

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/deppfellow/usercrud/internal/errs"
)

// Operation is what a route does to the users table.
type Operation int

const (
	OpCreate Operation = iota + 1
	OpList
	OpUpdate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpList:
		return "list"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// IDParam is the name of the path parameter carrying the user id.
const IDParam = "user_id"

// Route is one entry of the table.
type Route struct {
	Method string
	// Path is the template as the API gateway reports it, e.g. /get/{user_id}.
	Path string
	Op   Operation
	// HasID is set when Path ends with the {user_id} parameter.
	HasID bool
	// ValidatesBody is set for the operations whose body is checked.
	ValidatesBody bool
	Summary       string
}

// EchoPath returns the template in echo's syntax: /get/:user_id.
func (r Route) EchoPath() string {
	return strings.ReplaceAll(r.Path, "{"+IDParam+"}", ":"+IDParam)
}

// Routes is the route table.
var Routes = []Route{
	{Method: http.MethodPost, Path: "/create", Op: OpCreate, ValidatesBody: true, Summary: "Create a user"},
	{Method: http.MethodGet, Path: "/get", Op: OpList, Summary: "List users, optionally filtered by query parameters"},
	{Method: http.MethodGet, Path: "/get/{" + IDParam + "}", Op: OpList, HasID: true, Summary: "Get a user by id"},
	{Method: http.MethodPatch, Path: "/update/{" + IDParam + "}", Op: OpUpdate, HasID: true, ValidatesBody: true, Summary: "Update some fields of a user"},
	{Method: http.MethodDelete, Path: "/delete/{" + IDParam + "}", Op: OpDelete, HasID: true, Summary: "Delete a user"},
	{Method: http.MethodDelete, Path: "/delete", Op: OpDelete, Summary: "Delete every user"},
}

// Request is an inbound call, independent of the transport it came from.
type Request struct {
	Method string
	// Path is the route template, not the concrete URL path.
	Path string
	// PathID is the raw {user_id} value; empty when the route has none.
	PathID string
	Query  map[string]string
	Body   map[string]any
}

// Router matches requests against the table.
type Router struct {
	routes map[string]Route
	table  []Route
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// New indexes table. It panics on duplicate entries, which can only come
// from a programming error.
func New(table []Route) *Router {
	r := &Router{
		routes: make(map[string]Route, len(table)),
		table:  table,
	}
	for _, route := range table {
		key := routeKey(route.Method, route.Path)
		if _, dup := r.routes[key]; dup {
			panic("route: duplicate route " + key)
		}
		r.routes[key] = route
	}
	return r
}

// Default returns a router over Routes.
func Default() *Router {
	return New(Routes)
}

// Table returns the routes in declaration order.
func (r *Router) Table() []Route {
	return r.table
}

// Match finds the route for method and path template.
func (r *Router) Match(method, path string) (Route, error) {
	if route, ok := r.routes[routeKey(method, path)]; ok {
		return route, nil
	}
	return Route{}, errs.NewNotFoundError("No route for " + strings.ToUpper(method) + " " + path)
}

// ParseBody decodes a JSON object. Anything else (empty input, malformed
// JSON, arrays, scalars) yields an empty object.
func ParseBody(raw []byte) map[string]any {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return map[string]any{}
	}
	return body
}
