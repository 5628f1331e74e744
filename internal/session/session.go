package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned by Load when no driver is logged in.
var ErrNoSession = errors.New("no session")

// Session is the persisted login state of the driver.
type Session struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Driver       json.RawMessage `json:"driver,omitempty"`
	SavedAt      time.Time       `json:"saved_at"`
}

// Store persists the single driver session.
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// Authenticated reports whether store holds a usable token at now.
func Authenticated(ctx context.Context, store Store, now time.Time) (bool, error) {
	s, err := store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(s.Token) == "" {
		return false, nil
	}
	return !TokenExpired(s.Token, now), nil
}

// TokenExpired reports whether a JWT token carries an expiry at or before now.
// The signature is not verified; opaque tokens never expire locally.
func TokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
