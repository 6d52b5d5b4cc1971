// Package credentials holds the client-side session state: the access and
// refresh tokens issued by the storefront backend and the identity of the
// authenticated user. A Store is the single owner of that state for the
// lifetime of the application.
package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the authenticated principal as returned by the backend.
type User struct {
	ID       string `json:"userId,omitempty"`   // Unique identifier for the user
	Email    string `json:"email,omitempty"`    // User's email address
	FullName string `json:"fullName,omitempty"` // Display name
	Role     string `json:"roleName,omitempty"` // Role, e.g. "Admin", "Staff", or the customer default
}

// Credentials is the complete session state. It is replaced and cleared as a
// whole; there is no partial update.
type Credentials struct {
	AccessToken  string `json:"accessToken,omitempty"`  // Short-lived bearer token attached to requests
	RefreshToken string `json:"refreshToken,omitempty"` // Longer-lived token exchanged for a new access token
	User         *User  `json:"user,omitempty"`         // Identity of the authenticated principal
}

// IsAuthenticated reports whether the session holds a usable bearer token.
// The access token is only ever set through a successful login, register or
// refresh, so its presence is the authentication marker.
func (c Credentials) IsAuthenticated() bool {
	return c.AccessToken != ""
}

// HasRefreshToken reports whether a refresh token is available.
func (c Credentials) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// AccessTokenExpired decodes the access token without verifying its signature
// and reports whether its "exp" claim is in the past. Verification is the
// server's job; the client only needs the expiry horizon to decide whether a
// rehydrated token is worth presenting at all. Tokens without an exp claim,
// or that fail to parse, are not treated as expired - the server's 401 is the
// authority either way.
func (c Credentials) AccessTokenExpired() bool {
	if c.AccessToken == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return NowTimeFunc().After(exp.Time)
}

// Store is the process-wide credential store. Replace and Clear are atomic:
// a reader never observes a user without its matching token set.
type Store interface {
	// Snapshot returns a copy of the current session state.
	Snapshot() Credentials

	// Replace swaps the whole session state in one step.
	Replace(creds Credentials)

	// Clear resets all fields. It returns true if there was anything to
	// clear, so callers can make logout side effects idempotent.
	Clear() bool

	// AccessToken returns the current bearer token, or "".
	AccessToken() string

	// RefreshToken returns the current refresh token, or "".
	RefreshToken() string
}
