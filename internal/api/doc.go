// Package api translates HTTP requests into service calls and shapes every
// response as the {success, message, data, errors} envelope. Handlers take
// the owner of every task operation from the request context populated by
// middleware.AuthMiddleware, never from client input, and map service and
// store errors to status codes through MapErrorToStatusCode.
package api
