// Package tokeninspect reads claims out of a bearer token without verifying
// its signature. The server remains the authority on validity; the only use
// here is pre-classifying an already-expired token locally so the session
// layer can skip a doomed round trip.
package tokeninspect

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// ExpiresAt returns the token's exp claim. ok is false when the token is not
// a well-formed JWT or carries no expiry.
func ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token carries an exp claim in the past.
// Malformed tokens and tokens without expiry report false: they go to the
// server, which decides.
func Expired(token string, now time.Time) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return exp.Before(now)
}
