package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RS256Verifier checks signatures against a KeySet and returns the raw
// claim map. Shape checks are left to the Codec.
type RS256Verifier struct {
	keys   *KeySet
	issuer string
	now    func() time.Time
}

// NewVerifierRS256 creates a verifier. An empty issuer disables the iss check.
func NewVerifierRS256(keys *KeySet, issuer string) *RS256Verifier {
	return &RS256Verifier{keys: keys, issuer: issuer, now: time.Now}
}

// Verify validates the signature, algorithm, expiry and issuer.
func (v *RS256Verifier) Verify(tokenStr string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, claims, v.keyFunc)
	if err != nil {
		return nil, mapParseError(err)
	}
	if !token.Valid {
		return nil, ErrInvalidSig
	}

	return claims, nil
}

func (v *RS256Verifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("jwtx: missing kid")
	}

	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("jwtx: unknown kid %q: %w", kid, err)
	}
	return pub, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
}
