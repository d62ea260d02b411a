package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testIssuer = "accounts-test"

func newSigner(t *testing.T) *jwtx.RS256Signer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	s, err := jwtx.NewSignerRS256FromKey(key)
	require.NoError(t, err)
	return s
}

func newCodec(t *testing.T, opts ...jwtx.CodecOption) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewCodec(newSigner(t), jwtx.NewKeySet(), testIssuer, opts...)
	require.NoError(t, err)
	return c
}

func TestEncodeDecodeAccess(t *testing.T) {
	codec := newCodec(t)

	before := time.Now().Add(-time.Second)
	raw, err := codec.Encode(jwtx.NewAccessClaims("user-1", "alice", "alice@example.com"), time.Hour)
	require.NoError(t, err)

	tok, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, jwtx.TypeAccess, tok.Kind())

	ac, ok := tok.(*jwtx.AccessClaims)
	require.True(t, ok)
	require.Equal(t, "user-1", ac.Subject)
	require.Equal(t, "alice", ac.Username)
	require.Equal(t, "alice@example.com", ac.Email)
	require.Equal(t, testIssuer, ac.Issuer)
	require.NotEmpty(t, ac.ID)

	// iat <= now <= exp
	now := time.Now()
	require.False(t, ac.IssuedAt.Before(before))
	require.False(t, ac.IssuedAt.After(now))
	require.True(t, ac.ExpiresAt.After(now))
}

func TestEncodeDecodeRefresh(t *testing.T) {
	codec := newCodec(t)

	raw, err := codec.Encode(jwtx.NewRefreshClaims("user-1"), 60*24*time.Hour)
	require.NoError(t, err)

	rc, err := codec.DecodeRefresh(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", rc.Subject)
	require.Equal(t, jwtx.TypeRefresh, rc.Type)

	remaining := jwtx.Remaining(rc, time.Now())
	require.InDelta(t, (60 * 24 * time.Hour).Seconds(), remaining.Seconds(), 5)
}

func TestUniqueJTI(t *testing.T) {
	codec := newCodec(t)

	a, err := codec.Encode(jwtx.NewRefreshClaims("user-1"), time.Hour)
	require.NoError(t, err)
	b, err := codec.Encode(jwtx.NewRefreshClaims("user-1"), time.Hour)
	require.NoError(t, err)

	ra, err := codec.DecodeRefresh(a)
	require.NoError(t, err)
	rb, err := codec.DecodeRefresh(b)
	require.NoError(t, err)
	require.NotEqual(t, ra.ID, rb.ID)
}

func TestDecodeWrongType(t *testing.T) {
	codec := newCodec(t)

	access, err := codec.Encode(jwtx.NewAccessClaims("user-1", "alice", "a@example.com"), time.Hour)
	require.NoError(t, err)
	refresh, err := codec.Encode(jwtx.NewRefreshClaims("user-1"), time.Hour)
	require.NoError(t, err)

	_, err = codec.DecodeRefresh(access)
	require.ErrorIs(t, err, jwtx.ErrWrongType)

	_, err = codec.DecodeAccess(refresh)
	require.ErrorIs(t, err, jwtx.ErrWrongType)
}

func TestDecodeTamperedSignature(t *testing.T) {
	codec := newCodec(t)

	raw, err := codec.Encode(jwtx.NewAccessClaims("user-1", "alice", "a@example.com"), time.Hour)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)

	// Flip a character in the middle of the signature.
	sig := []byte(parts[2])
	mid := len(sig) / 2
	if sig[mid] == 'A' {
		sig[mid] = 'B'
	} else {
		sig[mid] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Decode(tampered)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestDecodeUnknownKey(t *testing.T) {
	issuer := newCodec(t)
	other := newCodec(t)

	raw, err := issuer.Encode(jwtx.NewRefreshClaims("user-1"), time.Hour)
	require.NoError(t, err)

	_, err = other.Decode(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}

func TestDecodeExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	signer := newSigner(t)
	keys := jwtx.NewKeySet()

	old, err := jwtx.NewCodec(signer, keys, testIssuer, jwtx.WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	current, err := jwtx.NewCodec(signer, keys, testIssuer)
	require.NoError(t, err)

	raw, err := old.Encode(jwtx.NewAccessClaims("user-1", "alice", "a@example.com"), time.Hour)
	require.NoError(t, err)

	_, err = current.Decode(raw)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestDecodeMalformed(t *testing.T) {
	codec := newCodec(t)

	for _, raw := range []string{"", "abc", "a.b.c", "not.a.jwt.token"} {
		_, err := codec.Decode(raw)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "input %q", raw)
	}
}

func TestDecodeRejectsWrongAlgorithm(t *testing.T) {
	codec := newCodec(t)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"type": "access",
		"sub":  "user-1",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestDecodeRejectsUnexpectedShape(t *testing.T) {
	signer := newSigner(t)
	codec, err := jwtx.NewCodec(signer, jwtx.NewKeySet(), testIssuer)
	require.NoError(t, err)

	now := time.Now()
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"type": "refresh",
			"sub":  "user-1",
			"iss":  testIssuer,
			"iat":  now.Unix(),
			"exp":  now.Add(time.Hour).Unix(),
			"jti":  "abc",
		}
	}

	t.Run("baseline is accepted", func(t *testing.T) {
		raw, err := signer.Sign(base())
		require.NoError(t, err)
		_, err = codec.DecodeRefresh(raw)
		require.NoError(t, err)
	})

	t.Run("unknown member", func(t *testing.T) {
		m := base()
		m["admin"] = true
		raw, err := signer.Sign(m)
		require.NoError(t, err)
		_, err = codec.Decode(raw)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("refresh carrying profile fields", func(t *testing.T) {
		m := base()
		m["username"] = "alice"
		raw, err := signer.Sign(m)
		require.NoError(t, err)
		_, err = codec.Decode(raw)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("missing jti", func(t *testing.T) {
		m := base()
		delete(m, "jti")
		raw, err := signer.Sign(m)
		require.NoError(t, err)
		_, err = codec.Decode(raw)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("unknown type tag", func(t *testing.T) {
		m := base()
		m["type"] = "id"
		raw, err := signer.Sign(m)
		require.NoError(t, err)
		_, err = codec.Decode(raw)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		m := base()
		m["iss"] = "someone-else"
		raw, err := signer.Sign(m)
		require.NoError(t, err)
		_, err = codec.Decode(raw)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}

func TestEncodeRejectsNonPositiveTTL(t *testing.T) {
	codec := newCodec(t)
	_, err := codec.Encode(jwtx.NewRefreshClaims("user-1"), 0)
	require.Error(t, err)
}
