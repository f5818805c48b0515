package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired inspects the bearer token's exp claim without verifying the
// signature — the backend is the authority on validity, this is only a local
// hint to skip a request that would 401 anyway. Tokens that cannot be parsed
// are treated as expired.
func TokenExpired(token string) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(time.Now())
}
