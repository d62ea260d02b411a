package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/otpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	// DefaultRotateWithin is how close to expiry a refresh token must be
	// before a refresh also issues a new one.
	DefaultRotateWithin = 30 * 24 * time.Hour

	DefaultTOTPIssuer = "CyberSecurityPlatform"

	qrCodeSize = 256
)

// SessionPolicy holds the token lifetimes and rotation threshold.
type SessionPolicy struct {
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	RotateWithin time.Duration
	TOTPIssuer   string
}

// DefaultSessionPolicy returns 60 minute access tokens, 60 day refresh
// tokens rotated in their last 30 days.
func DefaultSessionPolicy() SessionPolicy {
	return SessionPolicy{
		AccessTTL:    jwtx.DefaultAccessTokenTTL,
		RefreshTTL:   jwtx.DefaultRefreshTokenTTL,
		RotateWithin: DefaultRotateWithin,
		TOTPIssuer:   DefaultTOTPIssuer,
	}
}

// SessionService issues and re-validates the access/refresh token pair.
// There is no server-side session state; everything needed is in the
// tokens and the users table.
type SessionService struct {
	Store  store.Store
	Codec  *jwtx.Codec
	Hasher *cryptox.PasswordHasher
	Policy SessionPolicy
}

// Login checks the password, the active flag and the TOTP code, in that
// order, and issues a fresh token pair.
func (s *SessionService) Login(ctx context.Context, username, password, totpCode string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.AuthenticatePassword(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if !u.Active {
		l.Info("login rejected for inactive user", slog.String("user_id", u.ID))
		return nil, ErrInactiveUser
	}

	if !otpx.Validate(u.TOTPSecret, totpCode, s.Codec.Now()) {
		l.Info("login rejected: invalid totp code", slog.String("user_id", u.ID))
		return nil, ErrUnauthorized
	}

	access, err := s.issueAccess(u)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issueRefresh(u)
	if err != nil {
		return nil, err
	}

	l.Info("user logged in", slog.String("user_id", u.ID))

	return &domain.TokenPair{
		AccessToken:  access,
		AccessTTL:    s.Policy.AccessTTL,
		RefreshToken: refresh,
		RefreshTTL:   s.Policy.RefreshTTL,
	}, nil
}

// AuthenticatePassword checks username and password only. Every failure is
// ErrUnauthorized so unknown usernames look like wrong passwords.
func (s *SessionService) AuthenticatePassword(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.Hasher.VerifyMissing(password)
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, err
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, fmt.Errorf("verify password for %s: %w", u.ID, err)
	}

	return u, nil
}

// Refresh exchanges a refresh token for a new access token. A new refresh
// token is only issued once the presented one has RotateWithin or less
// left. The active flag is not checked here; Identify does that on use.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.DecodeRefresh(refreshToken)
	if err != nil {
		l.Debug("refresh token rejected", slog.Any("reason", err))
		return nil, ErrUnauthorized
	}

	u, err := s.lookupSubject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	access, err := s.issueAccess(u)
	if err != nil {
		return nil, err
	}

	pair := &domain.TokenPair{
		AccessToken: access,
		AccessTTL:   s.Policy.AccessTTL,
	}

	remaining := jwtx.Remaining(claims, s.Codec.Now())
	if remaining <= s.Policy.RotateWithin {
		refresh, err := s.issueRefresh(u)
		if err != nil {
			return nil, err
		}
		pair.RefreshToken = refresh
		pair.RefreshTTL = s.Policy.RefreshTTL

		l.Info("refresh token rotated",
			slog.String("user_id", u.ID),
			slog.Int("days_left", int(remaining.Hours()/24)),
		)
	}

	return pair, nil
}

// Identify resolves an access token to its user. Inactive users get
// ErrInactiveUser even though the token itself is fine.
func (s *SessionService) Identify(ctx context.Context, accessToken string) (domain.User, error) {
	claims, err := s.Codec.DecodeAccess(accessToken)
	if err != nil {
		slogx.FromContext(ctx).Debug("access token rejected", slog.Any("reason", err))
		return domain.User{}, ErrUnauthorized
	}

	u, err := s.lookupSubject(ctx, claims.Subject)
	if err != nil {
		return domain.User{}, err
	}
	if !u.Active {
		return domain.User{}, ErrInactiveUser
	}
	return u, nil
}

// EnrollmentQRCode renders the user's TOTP provisioning URI as a PNG after
// checking their password.
func (s *SessionService) EnrollmentQRCode(ctx context.Context, username, password string) ([]byte, error) {
	u, err := s.AuthenticatePassword(ctx, username, password)
	if err != nil {
		return nil, err
	}

	png, err := otpx.QRCodePNG(u.TOTPSecret, u.Username, s.Policy.TOTPIssuer, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

func (s *SessionService) lookupSubject(ctx context.Context, sub string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, sub)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *SessionService) issueAccess(u domain.User) (string, error) {
	return s.Codec.Encode(jwtx.NewAccessClaims(u.ID, u.Username, u.Email), s.Policy.AccessTTL)
}

func (s *SessionService) issueRefresh(u domain.User) (string, error) {
	return s.Codec.Encode(jwtx.NewRefreshClaims(u.ID), s.Policy.RefreshTTL)
}
