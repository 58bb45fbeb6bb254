// Package middleware stores the global echo middleware.
//
// These intercept requests to handle cross-cutting concerns such as request
// ids, request-scoped logging, tracing, CORS, body limits and panic recovery,
// and funnel every error into the failure envelope.
package middleware
