package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned by [InspectToken] for tokens that are not JWTs.
var ErrOpaqueToken = errors.New("token is not a JWT")

// TokenInfo holds the claims shown by "auth status".
type TokenInfo struct {
	Subject   string
	Issuer    string
	Name      string
	Email     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// InspectToken decodes a JWT without verifying its signature.
// The result is for display only and must not be used for authorization decisions.
func InspectToken(raw string) (*TokenInfo, error) {
	if raw == "" {
		return nil, ErrOpaqueToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	info := &TokenInfo{}
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}

	for _, key := range []string{"name", "preferred_username"} {
		if v, ok := claims[key].(string); ok && v != "" {
			info.Name = v
			break
		}
	}
	info.Email, _ = claims["email"].(string)
	return info, nil
}
