package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type UsersHandler struct {
	Accounts *service.AccountService
}

// HandleCreate registers a new account.
//
//	@Summary		Create a user
//	@Description	Registers an active account with a fresh TOTP secret. Use /api/v1/auth/totp-qrcode to enroll an authenticator.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.CreateUserRequest		true	"New account"
//	@Success		201		{object}	accountsdk.UserResponse				"Created user"
//	@Failure		400		{object}	accountsdk.ValidationErrorResponse	"Invalid fields"
//	@Failure		409		{object}	accountsdk.ErrorResponse			"Username already registered"
//	@Router			/api/v1/user [post]
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.CreateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidBody(w, r, err)
		return
	}

	u, err := h.Accounts.Create(r.Context(), service.CreateUserInput{
		Username:        req.Username,
		Password:        req.Password1,
		PasswordConfirm: req.Password2,
		Email:           req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err, accountsdk.ErrInvalidToken)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accountsdk.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
}

// HandleGet returns the public view of one account.
//
//	@Summary		Get a user
//	@Tags			Users
//	@Produce		json
//	@Param			username	path		string						true	"Username"
//	@Success		200			{object}	accountsdk.BrowseUser		"User"
//	@Failure		404			{object}	accountsdk.ErrorResponse	"User not found"
//	@Router			/api/v1/user/{username} [get]
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.Accounts.GetByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err, accountsdk.ErrInvalidToken)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, browseUser(u))
}

// HandleList returns one page of accounts, newest first.
//
//	@Summary		List users
//	@Tags			Users
//	@Produce		json
//	@Param			page	query		int									false	"Zero-based page number"
//	@Success		200		{array}		accountsdk.BrowseUser				"Users"
//	@Failure		400		{object}	accountsdk.ValidationErrorResponse	"Invalid page"
//	@Router			/api/v1/user [get]
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := 0
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			(&accountsdk.ValidationError{
				Message: "request validation failed",
				Details: map[string]string{"page": "must be an integer"},
			}).WriteError(w)
			return
		}
		page = n
	}

	users, err := h.Accounts.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err, accountsdk.ErrInvalidToken)
		return
	}

	out := make([]accountsdk.BrowseUser, 0, len(users))
	for _, u := range users {
		out = append(out, browseUser(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdate changes the caller's own account.
//
//	@Summary		Update a user
//	@Description	Only the account's owner may update it. Omitted fields are left unchanged.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Param			username	path	string						true	"Username"
//	@Param			request		body	accountsdk.UpdateUserRequest	true	"Fields to change"
//	@Success		204
//	@Failure		400	{object}	accountsdk.ValidationErrorResponse	"Invalid fields"
//	@Failure		401	{object}	accountsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		403	{object}	accountsdk.ErrorResponse			"Not the account owner"
//	@Failure		409	{object}	accountsdk.ErrorResponse			"Username already registered"
//	@Router			/api/v1/user/{username} [patch]
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(r.Context())
	if !ok {
		accountsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req accountsdk.UpdateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidBody(w, r, err)
		return
	}

	patch := domain.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Active:   req.IsActive,
	}
	if err := h.Accounts.Update(r.Context(), actor, r.PathValue("username"), patch); err != nil {
		writeServiceError(w, r, err, accountsdk.ErrInvalidToken)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes the caller's own account.
//
//	@Summary		Delete a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			username	path	string	true	"Username"
//	@Success		204
//	@Failure		401	{object}	accountsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	accountsdk.ErrorResponse	"Not the account owner"
//	@Router			/api/v1/user/{username} [delete]
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(r.Context())
	if !ok {
		accountsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.Accounts.Delete(r.Context(), actor, r.PathValue("username")); err != nil {
		writeServiceError(w, r, err, accountsdk.ErrInvalidToken)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func browseUser(u domain.User) accountsdk.BrowseUser {
	return accountsdk.BrowseUser{Username: u.Username, IsActive: u.Active}
}
