package accountsdk

import (
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// ============================================================================
// Error bodies
// ============================================================================

// ErrorResponse is the JSON body of every non validation error.
type ErrorResponse struct {
	Error            string `json:"error"             example:"invalid_credentials"`
	ErrorDescription string `json:"error_description" example:"invalid username or password or security code"`
}

// ValidationErrorResponse is returned with 400 when request fields fail
// validation.
type ValidationErrorResponse struct {
	Code    string            `json:"code"              example:"validation_error"`
	Message string            `json:"message"           example:"request validation failed"`
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Auth
// ============================================================================

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"  example:"alice"`
	Password string `json:"password"  example:"s3cret-pass!"`
	TOTPCode string `json:"totp_code" example:"123456"`
}

// TokenResponse mirrors the cookies set by login and refresh. RefreshToken
// is empty on a refresh that did not rotate.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type" example:"Bearer"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in" example:"3600"`
}

// UserInfoResponse is returned by GET /api/v1/auth/user-info.
type UserInfoResponse struct {
	ID       string `json:"id"        example:"0b8c3f7e-4d0a-4a5e-9f0e-0c2a7f1d9b11"`
	Username string `json:"username"  example:"alice"`
	Email    string `json:"email"     example:"alice@example.com"`
	IsActive bool   `json:"is_active" example:"true"`
}

// TOTPQRCodeRequest is the body of POST /api/v1/auth/totp-qrcode.
type TOTPQRCodeRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"s3cret-pass!"`
}

// ============================================================================
// Users
// ============================================================================

// CreateUserRequest is the body of POST /api/v1/user.
type CreateUserRequest struct {
	Username  string `json:"username"  example:"alice"`
	Password1 string `json:"password1" example:"s3cret-pass!"`
	Password2 string `json:"password2" example:"s3cret-pass!"`
	Email     string `json:"email"     example:"alice@example.com"`
}

// UserResponse is the full profile returned on creation. It never contains
// the password hash or TOTP secret.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BrowseUser is the public view of an account.
type BrowseUser struct {
	Username string `json:"username"  example:"alice"`
	IsActive bool   `json:"is_active" example:"true"`
}

// UpdateUserRequest is the body of PATCH /api/v1/user/{username}. Nil
// fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ============================================================================
// Health & keys
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks lists dependency status on /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the body of GET /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS
