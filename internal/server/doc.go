// Package server provides the loopback HTTP server used to complete browser sign-in.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [RequestLogger] is the middleware used by the CLI.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] receives the OAuth2 authorization code redirect.
//
// It validates the state parameter (CSRF protection) and sends the code, or the provider's error, through a channel.
// Code exchange is left to the caller, which holds the PKCE verifier.
//
// It only processes one callback to prevent replay attacks.
//
// # Loopback
//
// [Listen] binds the redirect address before the browser is opened, so a busy port fails fast,
// and reports the bound address so port 0 can be used in tests.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes.
// [BasicRouter.Handler] registers each route for GET only; other methods get 405 from the mux.
package server
