package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookieConfig controls the attributes of the token cookies. Cookies are
// always HttpOnly with Path=/.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieConfig is Secure with SameSite=Strict.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{Secure: true, SameSite: http.SameSiteStrictMode}
}

// ParseSameSite maps "strict", "lax" or "none" to http.SameSite.
func ParseSameSite(v string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("invalid SameSite value %q", v)
	}
}

func (c CookieConfig) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}
