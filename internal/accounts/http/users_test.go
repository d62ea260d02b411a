package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)

	req := accountsdk.CreateUserRequest{
		Username:  "alice",
		Password1: testPassword,
		Password2: testPassword,
		Email:     "alice@example.com",
	}

	rec := s.do(t, http.MethodPost, "/api/v1/user", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created accountsdk.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "alice", created.Username)
	require.True(t, created.IsActive)
	require.NotContains(t, rec.Body.String(), "password")
	require.NotContains(t, rec.Body.String(), "totp")

	t.Run("duplicate username", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/user", req)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, accountsdk.ErrorCodeConflict, decodeError(t, rec).Error)
	})

	t.Run("validation", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/user", accountsdk.CreateUserRequest{
			Username:  "bob",
			Password1: "abcdefgh",
			Password2: "abcdefgh",
			Email:     "not-an-email",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body accountsdk.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, accountsdk.ErrorCodeValidation, body.Code)
		require.Contains(t, body.Details, "username")
		require.Contains(t, body.Details, "password1")
		require.Contains(t, body.Details, "email")
	})

	t.Run("passwords differ", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/user", accountsdk.CreateUserRequest{
			Username:  "carol",
			Password1: testPassword,
			Password2: testPassword + "x",
			Email:     "carol@example.com",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body accountsdk.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Contains(t, body.Details, "password2")
	})
}

func TestGetAndListUsers(t *testing.T) {
	s := newTestServer(t)
	for i := range 18 {
		s.createUser(t, fmt.Sprintf("user%02d", i))
	}

	rec := s.do(t, http.MethodGet, "/api/v1/user/user03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var one accountsdk.BrowseUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	require.Equal(t, accountsdk.BrowseUser{Username: "user03", IsActive: true}, one)

	rec = s.do(t, http.MethodGet, "/api/v1/user/ghost", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, accountsdk.ErrorCodeNotFound, decodeError(t, rec).Error)

	var page []accountsdk.BrowseUser
	rec = s.do(t, http.MethodGet, "/api/v1/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 16)
	require.Equal(t, "user17", page[0].Username)

	rec = s.do(t, http.MethodGet, "/api/v1/user?page=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 2)
	require.Equal(t, "user00", page[1].Username)

	rec = s.do(t, http.MethodGet, "/api/v1/user?page=9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	for _, bad := range []string{"abc", "-1"} {
		rec = s.do(t, http.MethodGet, "/api/v1/user?page="+bad, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	s.createUser(t, "bobby")
	access, _ := s.login(t, alice)

	t.Run("requires a token", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/v1/user/alice", map[string]string{"email": "a@example.org"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("only the owner", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/v1/user/bobby", map[string]string{"email": "x@example.org"}, access)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, accountsdk.ErrorCodeForbidden, decodeError(t, rec).Error)
	})

	t.Run("rename onto a taken username", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/v1/user/alice", map[string]string{"username": "bobby"}, access)
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/v1/user/alice", map[string]string{"email": "nope"}, access)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("changes email", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/v1/user/alice", map[string]string{"email": "alice@example.org"}, access)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/v1/auth/user-info", nil, access)
		require.Equal(t, http.StatusOK, rec.Code)
		var info accountsdk.UserInfoResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		require.Equal(t, "alice@example.org", info.Email)
	})
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	s.createUser(t, "bobby")
	access, _ := s.login(t, alice)

	rec := s.do(t, http.MethodDelete, "/api/v1/user/bobby", nil, access)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/user/alice", nil, access)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/user/alice", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// the token outlives the account but no longer resolves
	rec = s.do(t, http.MethodGet, "/api/v1/auth/user-info", nil, access)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
