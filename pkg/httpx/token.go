package httpx

import (
	"errors"
	"net/http"
)

var ErrNoToken = errors.New("httpx: no token")

const bearerPrefix = "Bearer "

// ExtractToken finds a token on the request. A cookie named cookieName wins;
// otherwise the Authorization header must be "Bearer <token>".
func ExtractToken(r *http.Request, cookieName string) (string, error) {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	authz := r.Header.Get("Authorization")
	if len(authz) <= len(bearerPrefix) || authz[:len(bearerPrefix)] != bearerPrefix {
		return "", ErrNoToken
	}
	return authz[len(bearerPrefix):], nil
}

// WriteBearerChallenge sets the RFC 6750 WWW-Authenticate header.
func WriteBearerChallenge(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
}
