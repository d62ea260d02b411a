package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type AuthHandler struct {
	Sessions *service.SessionService
	Cookies  CookieConfig
}

// HandleLogin authenticates with password and TOTP code.
//
//	@Summary		Log in
//	@Description	Checks the password, the account's active flag and the TOTP code, then sets the access_token and refresh_token cookies.
//	@Description	The token pair is also returned in the body.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	accountsdk.TokenResponse	"Token pair"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"Invalid username, password or code"
//	@Failure		403		{object}	accountsdk.ErrorResponse	"Inactive user"
//	@Router			/api/v1/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidBody(w, r, err)
		return
	}

	pair, err := h.Sessions.Login(r.Context(), req.Username, req.Password, req.TOTPCode)
	if err != nil {
		writeServiceError(w, r, err, accountsdk.ErrInvalidCredentials)
		return
	}

	h.writeTokens(w, pair)
}

// HandleRefresh issues a new access token from a refresh token.
//
//	@Summary		Refresh the access token
//	@Description	Reads the refresh token from the refresh_token cookie or the Authorization header.
//	@Description	A new refresh token is only issued once the current one has 30 days or less left.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.TokenResponse	"New access token, and refresh token when rotated"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"Missing, expired or invalid refresh token"
//	@Router			/api/v1/auth/refresh [post]
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	raw, err := httpx.ExtractToken(r, RefreshCookieName)
	if err != nil {
		accountsdk.ErrInvalidToken.WriteError(w)
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, err, accountsdk.ErrInvalidToken)
		return
	}

	h.writeTokens(w, pair)
}

// HandleUserInfo returns the caller's profile.
//
//	@Summary		Get the current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.UserInfoResponse	"Current user"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	accountsdk.ErrorResponse	"Inactive user"
//	@Router			/api/v1/auth/user-info [get]
func (h *AuthHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(r.Context())
	if !ok {
		accountsdk.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserInfoResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsActive: u.Active,
	})
}

// HandleTOTPQRCode renders the TOTP enrollment QR code.
//
//	@Summary		Get the TOTP enrollment QR code
//	@Description	Returns a PNG of the otpauth:// provisioning URI for an authenticator app. Requires the account password.
//	@Tags			Auth
//	@Accept			json
//	@Produce		png
//	@Param			request	body		accountsdk.TOTPQRCodeRequest	true	"Credentials"
//	@Success		201		{file}		binary							"QR code"
//	@Failure		400		{object}	accountsdk.ErrorResponse		"Malformed body"
//	@Failure		401		{object}	accountsdk.ErrorResponse		"Invalid username or password"
//	@Router			/api/v1/auth/totp-qrcode [post]
func (h *AuthHandler) HandleTOTPQRCode(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.TOTPQRCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidBody(w, r, err)
		return
	}

	png, err := h.Sessions.EnrollmentQRCode(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err, accountsdk.ErrInvalidCredentials)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(png)
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, pair *domain.TokenPair) {
	h.Cookies.set(w, AccessCookieName, pair.AccessToken, pair.AccessTTL)
	if pair.RefreshToken != "" {
		h.Cookies.set(w, RefreshCookieName, pair.RefreshToken, pair.RefreshTTL)
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.AccessTTL.Seconds()),
	})
}
