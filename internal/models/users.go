package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/memoru/internal/shared"
)

// User is the signed-in account returned by GET /users/me.
type User struct {
	UserID           string     `json:"user_id"`
	DisplayName      *string    `json:"display_name,omitempty"`
	PictureURL       *string    `json:"picture_url,omitempty"`
	LineLinked       bool       `json:"line_linked"`
	LineUserID       *string    `json:"line_user_id,omitempty"`
	NotificationTime *string    `json:"notification_time,omitempty"`
	Timezone         string     `json:"timezone"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// Name returns the display name, falling back to the user id.
func (u User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.UserID
}

// UpdateSettingsRequest is the body of PUT /users/me/settings; nil fields are left unchanged.
type UpdateSettingsRequest struct {
	NotificationTime *string `json:"notification_time,omitempty"`
	Timezone         *string `json:"timezone,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	if r.NotificationTime == nil && r.Timezone == nil {
		return fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput)
	}
	if r.NotificationTime != nil {
		if err := ValidateNotificationTime(*r.NotificationTime); err != nil {
			return err
		}
	}
	if r.Timezone != nil {
		if _, err := time.LoadLocation(*r.Timezone); err != nil || *r.Timezone == "" {
			return fmt.Errorf("%w: unknown timezone %q", shared.ErrInvalidInput, *r.Timezone)
		}
	}
	return nil
}

// ValidateNotificationTime accepts a zero-padded 24-hour "HH:MM" value.
func ValidateNotificationTime(v string) error {
	if len(v) != 5 || v[2] != ':' {
		return fmt.Errorf("%w: notification time must be HH:MM, got %q", shared.ErrInvalidInput, v)
	}
	if _, err := time.Parse("15:04", v); err != nil {
		return fmt.Errorf("%w: notification time must be HH:MM, got %q", shared.ErrInvalidInput, v)
	}
	return nil
}

// LinkLineRequest carries the LINE id token proving account ownership.
type LinkLineRequest struct {
	IDToken string `json:"id_token"`
}

func (r *LinkLineRequest) Validate() error {
	r.IDToken = strings.TrimSpace(r.IDToken)
	if r.IDToken == "" {
		return fmt.Errorf("%w: id_token is required", shared.ErrInvalidInput)
	}
	return nil
}
