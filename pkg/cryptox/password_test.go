package cryptox_test

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordFormat(t *testing.T) {
	h := cryptox.NewPasswordHasher("pepper")

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Equal(t, "argon2id", parts[1])
			require.Equal(t, "v=19", parts[2])
			require.Equal(t, "m=19456,t=2,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.NoError(t, h.Verify(tt.password, hash))
		})
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h := cryptox.NewPasswordHasher("pepper")

	a, err := h.Hash("samepassword")
	require.NoError(t, err)
	b, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, a, b, "hashes should differ due to unique salts")
	require.NoError(t, h.Verify("samepassword", a))
	require.NoError(t, h.Verify("samepassword", b))
}

func TestVerifyPasswordWrongPassword(t *testing.T) {
	h := cryptox.NewPasswordHasher("pepper")
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		strings.Repeat("x", 10000),
	} {
		require.ErrorIs(t, h.Verify(wrong, hash), cryptox.ErrPasswordMismatch)
	}
}

func TestVerifyPasswordPepperMatters(t *testing.T) {
	hash, err := cryptox.NewPasswordHasher("first").Hash("secret-1!")
	require.NoError(t, err)

	err = cryptox.NewPasswordHasher("second").Verify("secret-1!", hash)
	require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
}

func TestVerifyPasswordInvalidHashFormat(t *testing.T) {
	h := cryptox.NewPasswordHasher("pepper")

	tests := []struct {
		name string
		hash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing version", "$argon2id$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.Verify("test-password", tt.hash), cryptox.ErrInvalidHash)
		})
	}
}
