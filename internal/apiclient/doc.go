// Package apiclient is the authenticated gateway to the memoru flashcard API.
//
// A [Client] attaches the current bearer token to every request and classifies responses:
//
//   - 204 resolves to no value without reading the body
//   - other 2xx responses are decoded as JSON
//   - 401 starts (or joins) the single in-flight token refresh, then retries the call
//   - any other status becomes an [*HTTPError] carrying the server's message and the status code
//
// Transport failures are returned unchanged and never trigger a refresh.
//
// When a refresh fails the client asks its [SessionProvider] to log in again and every waiting call fails with [ErrSessionExpired].
// Login runs in the background; [Client.Wait] blocks until it has returned.
//
// Typed helpers for the cards, reviews and users endpoints are built on [Do].
package apiclient
