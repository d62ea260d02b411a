package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Every repository method is a single statement, so there
// is no transaction API.
type Store interface {
	Users() Users

	// ApplyMigrations brings the schema up to date using the driver's
	// embedded migrations.
	ApplyMigrations(ctx context.Context) error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	Close() error
}

type Users interface {
	// CreateUser inserts u. A taken username returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ListUsers returns users newest first.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// UpdateUser applies patch to the user with id and stamps updatedAt.
	// Renaming onto a taken username returns ErrAlreadyExists.
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch, updatedAt time.Time) error

	DeleteUser(ctx context.Context, id string) error
}
