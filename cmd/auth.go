package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

// AuthLogin signs in through the browser and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	p, err := r.provider(ctx)
	if err != nil {
		return err
	}

	if err := p.Login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	r.writePlainln("✓ Signed in")
	return r.writePlain("You can now use: memoru cards due\n")
}

// AuthLogout deletes the stored session and prints the provider's sign-out URL, if any.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	p, err := r.provider(ctx)
	if err != nil {
		return err
	}

	endSession, err := p.Logout(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Signed out\n")
	if endSession != "" {
		r.writePlain("To end the browser session too, open:\n%s\n", endSession)
	}
	return nil
}

// AuthStatus reports the stored session without contacting the API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	p, err := r.provider(ctx)
	if err != nil {
		return err
	}

	status, err := p.Status(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if !status.Authenticated {
		return r.writePlain("✗ Not signed in\nRun 'memoru auth login' to sign in.\n")
	}

	r.writePlain("✓ Signed in\n")
	if !status.ExpiresAt.IsZero() {
		state := "valid"
		if status.Expired {
			state = "expired"
		}
		r.writePlain("Access token: %s (expires %s)\n", state, status.ExpiresAt.Local().Format(time.RFC1123))
	}
	if status.CanRefresh {
		r.writePlain("Refresh token: present\n")
	} else {
		r.writePlain("Refresh token: none\n")
	}

	if info := status.Token; info != nil {
		if info.Name != "" {
			r.writePlain("Name: %s\n", info.Name)
		}
		if info.Email != "" {
			r.writePlain("Email: %s\n", info.Email)
		}
		if info.Subject != "" {
			r.writePlain("Subject: %s\n", info.Subject)
		}
		if info.Issuer != "" {
			r.writePlain("Issuer: %s\n", info.Issuer)
		}
	}
	return nil
}
