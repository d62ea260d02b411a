package jwtx

import (
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is anything that can turn a claim set into a compact JWS.
type Signer interface {
	Alg() string
	KID() string
	Sign(jwt.Claims) (string, error)
	PublicJWK() JWK
	Validate() error
}

// RS256Signer signs with a single RSA private key. The kid is derived from
// the public key so every node holding the same keypair agrees on it.
type RS256Signer struct {
	kid string
	key *rsa.PrivateKey
}

// NewSignerRS256FromKey builds a signer around an already parsed key.
func NewSignerRS256FromKey(key *rsa.PrivateKey) (*RS256Signer, error) {
	if key == nil {
		return nil, errors.New("jwtx: nil RSA key")
	}
	return &RS256Signer{
		kid: Thumbprint(&key.PublicKey),
		key: key,
	}, nil
}

func (s *RS256Signer) Alg() string { return jwt.SigningMethodRS256.Alg() }
func (s *RS256Signer) KID() string { return s.kid }

// Sign serialises and signs the claims, setting the kid header.
func (s *RS256Signer) Sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK returns the verification half for publishing in a JWKS.
func (s *RS256Signer) PublicJWK() JWK {
	return NewRSAJWK(s.kid, "sig", s.Alg(), &s.key.PublicKey)
}

// Validate checks the key is usable for signing.
func (s *RS256Signer) Validate() error {
	if s.key == nil {
		return errors.New("jwtx: nil RSA key")
	}
	if s.key.N.BitLen() < 2048 {
		return errors.New("jwtx: RSA key shorter than 2048 bits")
	}
	return s.key.Validate()
}
