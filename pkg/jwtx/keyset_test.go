package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestKeySetPublishesSigner(t *testing.T) {
	signer := newSigner(t)
	keys := jwtx.NewKeySet()
	require.False(t, keys.IsReady())

	require.NoError(t, keys.AddSigner(signer))
	require.True(t, keys.IsReady())

	// Adding the same key twice should not duplicate the JWKS entry.
	require.NoError(t, keys.AddSigner(signer))

	jwks := keys.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, signer.KID(), jwks.Keys[0].Kid)
	require.Equal(t, "RS256", jwks.Keys[0].Alg)
	require.Equal(t, "sig", jwks.Keys[0].Use)

	_, err := keys.Get("missing")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}

func TestKeySetResetFromJWKS(t *testing.T) {
	a := newSigner(t)
	b := newSigner(t)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(a))

	require.NoError(t, keys.ResetFromJWKS(jwtx.JWKS{Keys: []jwtx.JWK{b.PublicJWK()}}))

	_, err := keys.Get(a.KID())
	require.ErrorIs(t, err, jwtx.ErrNoKey)
	_, err = keys.Get(b.KID())
	require.NoError(t, err)
}

func TestThumbprintIsStable(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	a, err := jwtx.NewSignerRS256FromKey(key)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	kid := keys.AddPublicKey(&key.PublicKey)

	require.Equal(t, a.KID(), kid)
	require.Equal(t, kid, jwtx.Thumbprint(&key.PublicKey))
	require.Len(t, kid, 43)
}

func TestLoadRSAKeyPair(t *testing.T) {
	dir := t.TempDir()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPath := filepath.Join(dir, "jwt-private.pem")
	pubPath := filepath.Join(dir, "jwt-public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubPEM, err := encodePublicPEM(&key.PublicKey)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	priv, pub, err := jwtx.LoadRSAKeyPair(privPath, pubPath)
	require.NoError(t, err)
	require.True(t, priv.PublicKey.Equal(pub))

	t.Run("mismatched pair is rejected", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		otherPub, err := encodePublicPEM(&other.PublicKey)
		require.NoError(t, err)

		mismatched := filepath.Join(dir, "other-public.pem")
		require.NoError(t, os.WriteFile(mismatched, otherPub, 0o600))

		_, _, err = jwtx.LoadRSAKeyPair(privPath, mismatched)
		require.Error(t, err)
	})

	t.Run("PKCS8 private key", func(t *testing.T) {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)
		p8 := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

		parsed, err := jwtx.ParseRSAPrivateKeyPEM(p8)
		require.NoError(t, err)
		require.True(t, key.Equal(parsed))
	})
}

func encodePublicPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
