package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "accounts-test"
	testPassword = "abcdefg1!"
)

var testKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
})

// testEnv wires both services over an in-memory sqlite store.
type testEnv struct {
	store    *sqlite.Store
	signer   *jwtx.RS256Signer
	keys     *jwtx.KeySet
	sessions *SessionService
	accounts *AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations(context.Background()))

	signer, err := jwtx.NewSignerRS256FromKey(testKey())
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	codec, err := jwtx.NewCodec(signer, keys, testIssuer)
	require.NoError(t, err)

	// cheap parameters keep the tests fast
	hasher := &cryptox.PasswordHasher{
		Pepper: "test-pepper",
		Params: cryptox.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16},
	}

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick atomic.Int64

	return &testEnv{
		store:  s,
		signer: signer,
		keys:   keys,
		sessions: &SessionService{
			Store:  s,
			Codec:  codec,
			Hasher: hasher,
			Policy: DefaultSessionPolicy(),
		},
		accounts: &AccountService{
			Store:      s,
			Hasher:     hasher,
			TOTPIssuer: DefaultTOTPIssuer,
			PageSize:   DefaultPageSize,
			Now: func() time.Time {
				return base.Add(time.Duration(tick.Add(1)) * time.Second)
			},
		},
	}
}

// codecAt returns a codec sharing env's key whose clock is fixed at now.
func (e *testEnv) codecAt(t *testing.T, now time.Time) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewCodec(e.signer, e.keys, testIssuer, jwtx.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return c
}

func (e *testEnv) createUser(t *testing.T, username string) domain.User {
	t.Helper()
	u, err := e.accounts.Create(context.Background(), CreateUserInput{
		Username:        username,
		Password:        testPassword,
		PasswordConfirm: testPassword,
		Email:           username + "@example.com",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) currentCode(t *testing.T, u domain.User) string {
	t.Helper()
	code, err := totp.GenerateCode(u.TOTPSecret, e.sessions.Codec.Now())
	require.NoError(t, err)
	return code
}

func (e *testEnv) deactivate(t *testing.T, u domain.User) {
	t.Helper()
	inactive := false
	require.NoError(t, e.accounts.Update(context.Background(), u, u.Username, domain.UserPatch{Active: &inactive}))
}
