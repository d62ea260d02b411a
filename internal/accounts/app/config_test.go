package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, 60*time.Minute, cfg.AccessTTL)
	require.Equal(t, 60*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 30*24*time.Hour, cfg.RotateWithin)
	require.Equal(t, 16, cfg.PageSize)
	require.Equal(t, "CyberSecurityPlatform", cfg.TOTPIssuer)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"AUTH_ACCESS_TTL=15m\n"+
			"USER_PAGE_SIZE=5\n"+
			"AUTH_COOKIE_SECURE=false\n"+
			"PORT=9000\n",
	), 0o600))

	t.Setenv("ENV_FILE", path)
	// the real environment wins over the file
	t.Setenv("PORT", "9100")
	// godotenv sets variables it loads; clear them after the test
	for _, k := range []string{"AUTH_ACCESS_TTL", "USER_PAGE_SIZE", "AUTH_COOKIE_SECURE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 5, cfg.PageSize)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, 9100, cfg.Port)
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	base, err := LoadConfig()
	require.NoError(t, err)

	cases := map[string]func(*Config){
		"postgres without url": func(c *Config) { c.DatabaseDriver = DriverPostgres },
		"unknown driver":       func(c *Config) { c.DatabaseDriver = "mysql" },
		"rotate beyond ttl":    func(c *Config) { c.RotateWithin = c.RefreshTTL + time.Hour },
		"zero page size":       func(c *Config) { c.PageSize = 0 },
		"small rsa key":        func(c *Config) { c.RSABits = 1024 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	cfg := base
	cfg.DatabaseDriver = DriverPostgres
	cfg.DatabaseURL = "postgres://accounts@localhost/accounts"
	require.NoError(t, cfg.Validate())
}
