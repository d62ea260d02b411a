package accountsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// Client talks to the accounts service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client with a 10 second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges credentials and a TOTP code for a Session.
func (c *Client) Login(ctx context.Context, username, password, totpCode string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: username,
		Password: password,
		TOTPCode: totpCode,
	})
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, tokens), nil
}

// Refresh exchanges a refresh token for a new access token. RefreshToken in
// the result is only set when the server rotated it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil)
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// UserInfo returns the profile behind an access token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfoResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/auth/user-info", accessToken, nil)
	if err != nil {
		return nil, err
	}

	var info UserInfoResponse
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}

// TOTPQRCode returns the enrollment QR code as PNG bytes.
func (c *Client) TOTPQRCode(ctx context.Context, username, password string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/totp-qrcode", "", TOTPQRCodeRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	return readBody(resp, http.StatusCreated)
}

// CreateUser registers a new account.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/user", "", req)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser returns the public view of one account.
func (c *Client) GetUser(ctx context.Context, username string) (*BrowseUser, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/user/"+url.PathEscape(username), "", nil)
	if err != nil {
		return nil, err
	}

	var user BrowseUser
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of accounts, newest first. Pages start at 0.
func (c *Client) ListUsers(ctx context.Context, page int) ([]BrowseUser, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v1/user?page=%d", page), "", nil)
	if err != nil {
		return nil, err
	}

	var users []BrowseUser
	if err := decodeJSON(resp, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// GetLiveness calls /livez.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness calls /readyz.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetJWKS fetches the public signing keys.
func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", "", nil)
	if err != nil {
		return nil, err
	}

	var jwks JWKSResponse
	if err := decodeJSON(resp, &jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return &jwks, nil
}

// FetchKeySet loads the service's JWKS into a key set so other services can
// verify access tokens locally with jwtx.NewVerifierRS256.
func (c *Client) FetchKeySet(ctx context.Context) (*jwtx.KeySet, error) {
	jwks, err := c.GetJWKS(ctx)
	if err != nil {
		return nil, err
	}

	keys := jwtx.NewKeySet()
	if err := keys.ResetFromJWKS(jwtx.JWKS(*jwks)); err != nil {
		return nil, fmt.Errorf("load jwks: %w", err)
	}
	return keys, nil
}
