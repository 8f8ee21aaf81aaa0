// Package auth decodes the locally persisted bearer token into an identity.
// The token is opaque to the client; verification is the server's job. We
// only read the claims to know who we are and when the token lapses.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no stored token")

// Claims is the subset of the backend's token claims the client reads.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity is the local user as derived from the stored token.
type Identity struct {
	UserID   string
	Username string
	Expires  time.Time
}

// FromToken decodes an identity from a bearer token without verifying the
// signature.
func FromToken(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	id := &Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
	}
	if claims.ExpiresAt != nil {
		id.Expires = claims.ExpiresAt.Time
	}
	return id, nil
}

// Expired reports whether the token has lapsed. A token without an expiry
// claim never expires locally.
func (i *Identity) Expired(now time.Time) bool {
	return !i.Expires.IsZero() && now.After(i.Expires)
}
