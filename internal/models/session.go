package models

import "time"

// Session is the token set persisted after an OIDC login.
type Session struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenType    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the access token has expired at now. A zero expiry never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// CanRefresh reports whether a refresh token is available.
func (s *Session) CanRefresh() bool {
	return s != nil && s.RefreshToken != ""
}
