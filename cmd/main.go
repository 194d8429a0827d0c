package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/desertthunder/memoru/internal/apiclient"
	"github.com/desertthunder/memoru/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := runner.app().Run(ctx, os.Args)
	if errors.Is(err, apiclient.ErrSessionExpired) {
		fmt.Fprintln(os.Stderr, "Session expired")
		fmt.Fprintln(os.Stderr, "Complete the sign-in in your browser, or run 'memoru auth login'.")
	}

	// a session-expired response starts a sign-in that must finish before exit; ctrl-c abandons it
	runner.Close(ctx)

	switch {
	case err == nil:
	case errors.Is(err, apiclient.ErrSessionExpired):
		os.Exit(1)
	default:
		logger.Fatalf("application error: %v", err)
	}
}
