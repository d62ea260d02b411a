package jwtx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ParseRSAPrivateKeyPEM handles both PKCS1 and PKCS8 encodings.
func ParseRSAPrivateKeyPEM(pemKey []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for RSA key")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS1: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
		}
		key, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("jwtx: not RSA private key")
		}
		return key, nil
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}
}

// ParseRSAPublicKeyPEM handles PKIX ("PUBLIC KEY") and PKCS1
// ("RSA PUBLIC KEY") encodings.
func ParseRSAPublicKeyPEM(pemKey []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for RSA public key")
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS1 public key: %w", err)
		}
		return key, nil
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKIX: %w", err)
		}
		key, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("jwtx: not RSA public key")
		}
		return key, nil
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}
}

// LoadRSAKeyPair reads the private and public key files and checks that
// they belong together.
func LoadRSAKeyPair(privatePath, publicPath string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privPEM, err := os.ReadFile(privatePath) // #nosec G304 -- path comes from config
	if err != nil {
		return nil, nil, fmt.Errorf("jwtx: read private key: %w", err)
	}
	pubPEM, err := os.ReadFile(publicPath) // #nosec G304 -- path comes from config
	if err != nil {
		return nil, nil, fmt.Errorf("jwtx: read public key: %w", err)
	}

	priv, err := ParseRSAPrivateKeyPEM(privPEM)
	if err != nil {
		return nil, nil, err
	}
	pub, err := ParseRSAPublicKeyPEM(pubPEM)
	if err != nil {
		return nil, nil, err
	}

	if !priv.PublicKey.Equal(pub) {
		return nil, nil, errors.New("jwtx: public key does not match private key")
	}

	return priv, pub, nil
}
