// ABOUTME: Access-token inspection for display purposes
// ABOUTME: Parses the JWT cookie without verification; the server is the verifier

package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrNoExpiry       = errors.New("token has no expiry claim")
)

// TokenExpiry extracts the expiry time from an access-token JWT. The signature
// is deliberately not verified: the client never trusts the token for
// authorization decisions, it only surfaces time-to-expiry in status output.
func TokenExpiry(tokenString string) (time.Time, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, ErrMalformedToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}, ErrMalformedToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrNoExpiry
	}

	return exp.Time, nil
}
