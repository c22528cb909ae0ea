// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request IDs, request logging, CORS, tracing, body
// limits and panic recovery, plus the global error handler
// that turns every failure into the API's error body.
package middleware
