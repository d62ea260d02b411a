package accountsdk

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// expiryBuffer refreshes slightly before the server would reject the token.
const expiryBuffer = 30 * time.Second

// Session holds the token pair from a login and refreshes the access token
// when it runs out. Safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(c *Client, tokens TokenResponse) *Session {
	s := &Session{client: c, refreshToken: tokens.RefreshToken}
	s.setAccess(tokens)
	return s
}

// NewSessionFromTokens resumes a session from stored tokens. The access
// token is treated as expired so the first call refreshes it.
func (c *Client) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}

// Tokens returns the current access and refresh tokens.
func (s *Session) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// Refresh forces a refresh, storing a rotated refresh token if one comes
// back.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	tokens, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return err
	}
	s.setAccess(*tokens)
	if tokens.RefreshToken != "" {
		s.refreshToken = tokens.RefreshToken
	}
	return nil
}

func (s *Session) setAccess(tokens TokenResponse) {
	s.accessToken = tokens.AccessToken
	if tokens.ExpiresIn > 0 {
		s.expiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - expiryBuffer)
	} else {
		s.expiresAt = time.Time{}
	}
}

func (s *Session) validToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken == "" || time.Now().After(s.expiresAt) {
		if err := s.refreshLocked(ctx); err != nil {
			return "", err
		}
	}
	return s.accessToken, nil
}

// UserInfo returns the logged in user's profile.
func (s *Session) UserInfo(ctx context.Context) (*UserInfoResponse, error) {
	token, err := s.validToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.UserInfo(ctx, token)
}

// UpdateUser applies a partial update to the named account, which must be
// the session's own.
func (s *Session) UpdateUser(ctx context.Context, username string, req UpdateUserRequest) error {
	token, err := s.validToken(ctx)
	if err != nil {
		return err
	}

	resp, err := s.client.doRequest(ctx, http.MethodPatch, "/api/v1/user/"+url.PathEscape(username), token, req)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DeleteUser removes the named account, which must be the session's own.
func (s *Session) DeleteUser(ctx context.Context, username string) error {
	token, err := s.validToken(ctx)
	if err != nil {
		return err
	}

	resp, err := s.client.doRequest(ctx, http.MethodDelete, "/api/v1/user/"+url.PathEscape(username), token, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
