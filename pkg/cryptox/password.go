package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrPasswordMismatch = errors.New("cryptox: password does not match")
	ErrInvalidHash      = errors.New("cryptox: invalid hash format")
)

// Argon2Params are the cost parameters written into every PHC string.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  int
}

// DefaultArgon2Params follows the OWASP minimum for argon2id.
var DefaultArgon2Params = Argon2Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// idKey is swapped in tests.
var idKey = argon2.IDKey

// missingSalt salts the throwaway derivation in VerifyMissing.
var missingSalt = []byte("cryptox-missing-user-salt")

// PasswordHasher hashes and verifies passwords as argon2id PHC strings. The
// pepper is appended to every password and never stored alongside the hash.
type PasswordHasher struct {
	Pepper string
	Params Argon2Params
}

// NewPasswordHasher returns a hasher with the default parameters.
func NewPasswordHasher(pepper string) *PasswordHasher {
	return &PasswordHasher{Pepper: pepper, Params: DefaultArgon2Params}
}

// Hash produces "$argon2id$v=19$m=..,t=..,p=..$salt$hash" with a fresh
// random salt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	p := h.Params
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := idKey([]byte(password+h.Pepper), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash with the parameters embedded in encoded and
// compares in constant time.
func (h *PasswordHasher) Verify(password, encoded string) error {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ErrInvalidHash
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: salt: %w", ErrInvalidHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return ErrInvalidHash
	}

	got := idKey(
		[]byte(password+h.Pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(want)), // #nosec G115 -- bounded by the decoded hash
	)

	if subtle.ConstantTimeCompare(got, want) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// VerifyMissing spends the same argon2 work as Verify against a hash made
// with h.Params and always reports ErrPasswordMismatch. Callers use it when
// the account does not exist so lookups of unknown users take as long as
// wrong passwords.
func (h *PasswordHasher) VerifyMissing(password string) error {
	p := h.Params
	_ = idKey([]byte(password+h.Pepper), missingSalt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return ErrPasswordMismatch
}
