package main

import (
	"context"

	"github.com/desertthunder/memoru/internal/models"
	"github.com/urfave/cli/v3"
)

// SettingsShow prints the signed-in user.
func (r *Runner) SettingsShow(ctx context.Context, cmd *cli.Command) error {
	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	user, err := api.CurrentUser(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	r.writeUser(user)
	return nil
}

// SettingsUpdate changes the notification time and/or timezone.
func (r *Runner) SettingsUpdate(ctx context.Context, cmd *cli.Command) error {
	var req models.UpdateSettingsRequest
	if cmd.IsSet("notification-time") {
		v := cmd.String("notification-time")
		req.NotificationTime = &v
	}
	if cmd.IsSet("timezone") {
		v := cmd.String("timezone")
		req.Timezone = &v
	}

	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	user, err := api.UpdateSettings(ctx, req)
	if err != nil {
		return err
	}

	r.writePlain("✓ Settings updated\n")
	r.writeUser(user)
	return nil
}

// SettingsLinkLine links a LINE account using its ID token.
func (r *Runner) SettingsLinkLine(ctx context.Context, cmd *cli.Command) error {
	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	user, err := api.LinkLine(ctx, models.LinkLineRequest{IDToken: cmd.String("id-token")})
	if err != nil {
		return err
	}
	if user == nil {
		return r.writePlain("✓ LINE account linked\n")
	}
	return r.writePlain("✓ LINE account linked for %s\n", user.Name())
}

// SettingsUnlinkLine removes the LINE link.
func (r *Runner) SettingsUnlinkLine(ctx context.Context, cmd *cli.Command) error {
	api, err := r.client(ctx)
	if err != nil {
		return err
	}
	user, err := api.UnlinkLine(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return r.writePlain("✓ LINE account unlinked\n")
	}
	return r.writePlain("✓ LINE account unlinked for %s\n", user.Name())
}

func (r *Runner) writeUser(u *models.User) {
	if u == nil {
		return
	}
	r.writePlain("User: %s\n", u.Name())
	r.writePlain("ID: %s\n", u.UserID)
	if u.NotificationTime != nil {
		r.writePlain("Notification time: %s\n", *u.NotificationTime)
	}
	if u.Timezone != "" {
		r.writePlain("Timezone: %s\n", u.Timezone)
	}
	if u.LineLinked {
		r.writePlain("LINE: linked\n")
	} else {
		r.writePlain("LINE: not linked\n")
	}
}
