package jwtx

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec issues and reads the two token variants. It is safe for concurrent
// use; the only state is read-only key material.
type Codec struct {
	signer   Signer
	verifier *RS256Verifier
	issuer   string
	now      func() time.Time
}

type CodecOption func(*Codec)

// WithClock overrides the time source for both issuing and verifying.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec wires a signer and the key set used for verification. The
// signer's public key is added to keys.
func NewCodec(signer Signer, keys *KeySet, issuer string, opts ...CodecOption) (*Codec, error) {
	if err := signer.Validate(); err != nil {
		return nil, err
	}
	if err := keys.AddSigner(signer); err != nil {
		return nil, err
	}

	c := &Codec{
		signer: signer,
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.verifier = NewVerifierRS256(keys, issuer)
	c.verifier.now = c.now
	return c, nil
}

// Now returns the codec's notion of the current time.
func (c *Codec) Now() time.Time { return c.now().UTC() }

// Encode stamps iss, iat, exp and jti onto tok and signs it. tok is
// modified in place.
func (c *Codec) Encode(tok Token, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("jwtx: ttl must be positive")
	}

	now := c.Now()
	rc := tok.registered()
	rc.Issuer = c.issuer
	rc.IssuedAt = jwt.NewNumericDate(now)
	rc.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	rc.ID = NewJTI()

	switch t := tok.(type) {
	case *AccessClaims:
		t.Type = TypeAccess
	case *RefreshClaims:
		t.Type = TypeRefresh
	}

	return c.signer.Sign(tok)
}

// Decode verifies raw and returns either *AccessClaims or *RefreshClaims.
// Claim sets with unknown or missing members are rejected.
func (c *Codec) Decode(raw string) (Token, error) {
	m, err := c.verifier.Verify(raw)
	if err != nil {
		return nil, err
	}

	typ, _ := m["type"].(string)
	shape, ok := shapes[TokenType(typ)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidClaim, typ)
	}
	if err := shape.check(m); err != nil {
		return nil, err
	}

	var tok Token
	switch TokenType(typ) {
	case TypeAccess:
		tok = &AccessClaims{}
	default:
		tok = &RefreshClaims{}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
	if tok.registered().Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidClaim)
	}

	return tok, nil
}

// DecodeAccess decodes raw and requires an access token.
func (c *Codec) DecodeAccess(raw string) (*AccessClaims, error) {
	tok, err := c.Decode(raw)
	if err != nil {
		return nil, err
	}
	ac, ok := tok.(*AccessClaims)
	if !ok {
		return nil, ErrWrongType
	}
	return ac, nil
}

// DecodeRefresh decodes raw and requires a refresh token.
func (c *Codec) DecodeRefresh(raw string) (*RefreshClaims, error) {
	tok, err := c.Decode(raw)
	if err != nil {
		return nil, err
	}
	rc, ok := tok.(*RefreshClaims)
	if !ok {
		return nil, ErrWrongType
	}
	return rc, nil
}
