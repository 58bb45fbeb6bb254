// Package handler is the HTTP layer in front of the services.
//
// It turns an echo request into a transport-independent route.Request,
// hands it to the user service and writes the success envelope. Failures
// are returned to echo so the global error handler renders them.
package handler
