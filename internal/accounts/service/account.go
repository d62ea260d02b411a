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
	"github.com/aussiebroadwan/accounts/pkg/otpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/google/uuid"
)

const DefaultPageSize = 16

type CreateUserInput struct {
	Username        string
	Password        string
	PasswordConfirm string
	Email           string
}

// AccountService is the CRUD surface over users. Mutations other than
// Create are restricted to the account's owner.
type AccountService struct {
	Store      store.Store
	Hasher     *cryptox.PasswordHasher
	TOTPIssuer string
	PageSize   int

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	// postgres keeps microseconds
	return now().UTC().Truncate(time.Microsecond)
}

func (s *AccountService) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

// Create validates in, hashes the password and stores a new active user
// with a fresh TOTP secret. A taken username is ErrConflict whether the
// pre-check or the insert catches it.
func (s *AccountService) Create(ctx context.Context, in CreateUserInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	var verr ValidationError
	validateUsername(&verr, "username", in.Username)
	validatePassword(&verr, "password1", in.Password)
	validateEmail(&verr, "email", in.Email)
	if err := verr.err(); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	if err := s.Hasher.Verify(in.PasswordConfirm, hash); err != nil {
		verr.add("password2", "passwords do not match")
		return domain.User{}, &verr
	}

	_, err = s.Store.Users().GetUserByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return domain.User{}, ErrConflict
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, err
	}

	secret, err := otpx.GenerateSecret(s.TOTPIssuer, in.Username)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	u := domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		TOTPSecret:   secret,
		Email:        in.Email,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}

	l.Info("user created", slog.String("user_id", u.ID))
	return u, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	return u, mapStoreErr(err)
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	return u, mapStoreErr(err)
}

// List returns page (0-based) of users, newest first.
func (s *AccountService) List(ctx context.Context, page int) ([]domain.User, error) {
	if page < 0 {
		return nil, &ValidationError{Fields: map[string]string{"page": "must be zero or greater"}}
	}

	size := s.pageSize()
	return s.Store.Users().ListUsers(ctx, size, page*size)
}

// Update applies patch to username's account. actor must be that account.
func (s *AccountService) Update(ctx context.Context, actor domain.User, username string, patch domain.UserPatch) error {
	if actor.Username != username {
		return ErrNotOwner
	}

	var verr ValidationError
	if patch.Username != nil {
		validateUsername(&verr, "username", *patch.Username)
	}
	if patch.Email != nil {
		validateEmail(&verr, "email", *patch.Email)
	}
	if err := verr.err(); err != nil {
		return err
	}

	if patch.Empty() {
		return nil
	}

	err := s.Store.Users().UpdateUser(ctx, actor.ID, patch, s.now())
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrConflict
	}
	return mapStoreErr(err)
}

// Delete removes username's account. actor must be that account.
func (s *AccountService) Delete(ctx context.Context, actor domain.User, username string) error {
	if actor.Username != username {
		return ErrNotOwner
	}

	if err := s.Store.Users().DeleteUser(ctx, actor.ID); err != nil {
		return mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("user deleted", slog.String("user_id", actor.ID))
	return nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
