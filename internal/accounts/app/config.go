package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Issuer     string // Optional: iss claim for tokens (default: accounts)
	TOTPIssuer string // Optional: label shown by authenticator apps (default: CyberSecurityPlatform)

	PrivateKeyFile string // Optional: PEM RSA private key (default: ./keys/private.pem)
	PublicKeyFile  string // Optional: PEM RSA public key (default: ./keys/public.pem)
	GenerateKeys   bool   // Optional: write a new key pair when none exists (default: false)
	RSABits        int    // Optional: size of generated keys (default: 4096)

	AccessTTL    time.Duration // Optional: access token lifetime (default: 60m)
	RefreshTTL   time.Duration // Optional: refresh token lifetime (default: 60 days)
	RotateWithin time.Duration // Optional: rotate refresh tokens with this much left (default: 30 days)

	CookieSecure   bool   // Optional: Secure attribute on token cookies (default: true)
	CookieSameSite string // Optional: strict, lax or none (default: strict)

	PepperFile string // Optional: path to the password pepper (default: ./pepper)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: sqlite file (default: ./accounts.db)
	DatabaseURL    string // Required for postgres: connection string

	PageSize int // Optional: users per list page (default: 16)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading ENV_FILE (default .env)
// if it exists. Variables already set in the environment win over the file.
func LoadConfig() (Config, error) {
	envFile := getEnvOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Config{
		Issuer:     getEnvOrDefault("AUTH_ISSUER", "accounts"),
		TOTPIssuer: getEnvOrDefault("AUTH_TOTP_ISSUER", service.DefaultTOTPIssuer),

		PrivateKeyFile: getEnvOrDefault("AUTH_PRIVATE_KEY_FILE", "keys/private.pem"),
		PublicKeyFile:  getEnvOrDefault("AUTH_PUBLIC_KEY_FILE", "keys/public.pem"),
		GenerateKeys:   getEnvBoolOrDefault("AUTH_GENERATE_KEYS", false),
		RSABits:        getEnvIntOrDefault("AUTH_RSA_BITS", 4096),

		AccessTTL:    getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:   getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		RotateWithin: getEnvDurationOrDefault("AUTH_REFRESH_ROTATE_WITHIN", service.DefaultRotateWithin),

		CookieSecure:   getEnvBoolOrDefault("AUTH_COOKIE_SECURE", true),
		CookieSameSite: getEnvOrDefault("AUTH_COOKIE_SAMESITE", "strict"),

		PepperFile: getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "accounts.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),

		PageSize: getEnvIntOrDefault("USER_PAGE_SIZE", service.DefaultPageSize),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg, cfg.Validate()
}

// Validate rejects combinations the service cannot start with.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("AUTH_DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown AUTH_DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.RotateWithin < 0 || c.RotateWithin > c.RefreshTTL {
		return fmt.Errorf("AUTH_REFRESH_ROTATE_WITHIN must be between 0 and %s", c.RefreshTTL)
	}
	if c.PageSize <= 0 {
		return errors.New("USER_PAGE_SIZE must be positive")
	}
	if c.RSABits < 2048 {
		return errors.New("AUTH_RSA_BITS must be at least 2048")
	}
	return nil
}

// SessionPolicy is the token policy handed to the session service.
func (c Config) SessionPolicy() service.SessionPolicy {
	return service.SessionPolicy{
		AccessTTL:    c.AccessTTL,
		RefreshTTL:   c.RefreshTTL,
		RotateWithin: c.RotateWithin,
		TOTPIssuer:   c.TOTPIssuer,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
