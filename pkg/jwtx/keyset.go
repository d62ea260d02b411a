package jwtx

import (
	"crypto/rsa"
	"sync"
)

// KeySet holds the RSA verification keys known to this process. It is safe
// for concurrent use so the JWKS handler and the verifier can share it.
type KeySet struct {
	mu  sync.RWMutex
	jks JWKS
	pub map[string]*rsa.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{
		pub: make(map[string]*rsa.PublicKey),
	}
}

// AddSigner registers a Signer's public key.
func (k *KeySet) AddSigner(s Signer) error {
	return k.AddJWK(s.PublicJWK())
}

// AddPublicKey registers a bare public key under its thumbprint.
func (k *KeySet) AddPublicKey(pub *rsa.PublicKey) string {
	kid := Thumbprint(pub)
	j := NewRSAJWK(kid, "sig", "RS256", pub)

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.pub[kid]; !ok {
		k.jks.Keys = append(k.jks.Keys, j)
	}
	k.pub[kid] = pub
	return kid
}

// AddJWK parses and registers a JWK.
func (k *KeySet) AddJWK(j JWK) error {
	pub, err := j.PublicKey()
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.pub[j.Kid]; !ok {
		k.jks.Keys = append(k.jks.Keys, j)
	}
	k.pub[j.Kid] = pub
	return nil
}

// Get returns the public key for the given kid.
func (k *KeySet) Get(kid string) (*rsa.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// PublicJWKS returns a snapshot of the set for HTTP serving.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	keys := make([]JWK, len(k.jks.Keys))
	copy(keys, k.jks.Keys)
	return JWKS{Keys: keys}
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}

// ResetFromJWKS replaces every key with the contents of jwks. Used by
// clients that pull keys from /.well-known/jwks.json.
func (k *KeySet) ResetFromJWKS(jwks JWKS) error {
	next := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, j := range jwks.Keys {
		pub, err := j.PublicKey()
		if err != nil {
			return err
		}
		next[j.Kid] = pub
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub = next
	k.jks = jwks
	return nil
}
