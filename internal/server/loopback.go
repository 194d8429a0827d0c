package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Loopback is a running HTTP server bound to a local address.
type Loopback struct {
	srv      *http.Server
	listener net.Listener
	errs     chan error
}

// Listen binds addr and serves handler in the background.
func Listen(addr string, handler http.Handler) (*Loopback, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &Loopback{
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		listener: ln,
		errs:     make(chan error, 1),
	}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.errs <- err
		}
	}()

	return l, nil
}

// Addr returns the bound address, resolving port 0.
func (l *Loopback) Addr() string {
	return l.listener.Addr().String()
}

// Errors reports a failure of the serve loop.
func (l *Loopback) Errors() <-chan error {
	return l.errs
}

// Shutdown stops the server, waiting up to five seconds for in-flight requests.
func (l *Loopback) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return l.srv.Shutdown(ctx)
}
