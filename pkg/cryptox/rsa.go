package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

// WriteRSAKeyPair generates a keypair and writes the private key (PKCS8) and
// public key (PKIX) to the given paths. Existing files are never
// overwritten.
func WriteRSAKeyPair(privatePath, publicPath string, bits int) error {
	for _, p := range []string{privatePath, publicPath} {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("cryptox: %s already exists", p)
		}
	}

	key, err := newRSAKey(bits)
	if err != nil {
		return err
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("cryptox: failed to marshal public key: %w", err)
	}

	if err := writePEM(privatePath, "PRIVATE KEY", privDER, 0o600); err != nil {
		return err
	}
	return writePEM(publicPath, "PUBLIC KEY", pubDER, 0o644)
}

func newRSAKey(bits int) (*rsa.PrivateKey, error) {
	if bits < 2048 {
		return nil, fmt.Errorf("cryptox: RSA key size must be at least 2048 bits")
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate RSA key: %w", err)
	}
	return key, nil
}

func writePEM(path, typ string, der []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data := pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der})
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("cryptox: write %s: %w", path, err)
	}
	return nil
}
