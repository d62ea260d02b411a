package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTokenTTL  = 60 * time.Minute
	DefaultRefreshTokenTTL = 60 * 24 * time.Hour
)

// TokenType is the "type" claim that separates access from refresh tokens.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// Token is the decoded claim set of either an access or a refresh token.
// The concrete value is always *AccessClaims or *RefreshClaims.
type Token interface {
	jwt.Claims
	Kind() TokenType
	registered() *jwt.RegisteredClaims
}

// AccessClaims are carried by short lived access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims

	Type     TokenType `json:"type"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// RefreshClaims only identify the subject, everything else is looked up
// again when the token is exchanged.
type RefreshClaims struct {
	jwt.RegisteredClaims

	Type TokenType `json:"type"`
}

// Kind implements Token.
func (c *AccessClaims) Kind() TokenType { return TypeAccess }

func (c *AccessClaims) registered() *jwt.RegisteredClaims {
	return &c.RegisteredClaims
}

// Kind implements Token.
func (c *RefreshClaims) Kind() TokenType { return TypeRefresh }

func (c *RefreshClaims) registered() *jwt.RegisteredClaims {
	return &c.RegisteredClaims
}

// NewAccessClaims builds the variable part of an access token. Registered
// claims are stamped by the Codec.
func NewAccessClaims(subject, username, email string) *AccessClaims {
	return &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Type:             TypeAccess,
		Username:         username,
		Email:            email,
	}
}

// NewRefreshClaims builds the variable part of a refresh token.
func NewRefreshClaims(subject string) *RefreshClaims {
	return &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Type:             TypeRefresh,
	}
}

// Remaining reports how long the token has left at the given instant.
func Remaining(t Token, now time.Time) time.Duration {
	exp := t.registered().ExpiresAt
	if exp == nil {
		return 0
	}
	return exp.Sub(now)
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// claimShape lists which keys a given token type may and must carry.
type claimShape struct {
	allowed  map[string]struct{}
	required []string
}

var shapes = map[TokenType]claimShape{
	TypeAccess: newShape(
		[]string{"type", "sub", "iss", "iat", "exp", "jti", "username", "email"},
		[]string{"type", "sub", "iat", "exp", "jti", "username", "email"},
	),
	TypeRefresh: newShape(
		[]string{"type", "sub", "iss", "iat", "exp", "jti"},
		[]string{"type", "sub", "iat", "exp", "jti"},
	),
}

func newShape(allowed, required []string) claimShape {
	s := claimShape{allowed: make(map[string]struct{}, len(allowed)), required: required}
	for _, k := range allowed {
		s.allowed[k] = struct{}{}
	}
	return s
}

func (s claimShape) check(m jwt.MapClaims) error {
	for k := range m {
		if _, ok := s.allowed[k]; !ok {
			return ErrInvalidClaim
		}
	}
	for _, k := range s.required {
		if _, ok := m[k]; !ok {
			return ErrInvalidClaim
		}
	}
	return nil
}
