package server

import (
	"net/http"
)

// Middleware wraps an http.Handler, e.g. [RequestLogger].
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the paths it serves.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers routes behind a shared middleware stack.
type Router interface {
	http.Handler
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler) // empty method matches any
	Handler(handler Handler)                          // GET on every route of handler
	Routes() []string
}

var _ Router = (*BasicRouter)(nil)
