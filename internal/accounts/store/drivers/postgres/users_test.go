package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (store.Users, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStoreFromDB(db).Users(), mock
}

var userRowColumns = []string{"id", "username", "password_hash", "totp_secret", "email", "is_active", "created_at", "updated_at"}

func TestCreateUser_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.CreateUser(context.Background(), domain.User{ID: "u-1", Username: "alice"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	err := repo.CreateUser(context.Background(), domain.User{ID: "u-1", Username: "alice"})
	require.Error(t, err)
	require.Regexp(t, `db error: .*db down`, err.Error())
	require.False(t, errors.Is(err, store.ErrAlreadyExists))
}

func TestGetUserByUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	q := `(?s)^SELECT\s+id,\s*username,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1$`

	mock.ExpectQuery(q).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "alice", "hash", "SECRET", "alice@example.com", true, now, now))
	mock.ExpectQuery(q).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)
	require.Equal(t, "SECRET", u.TOTPSecret)
	require.True(t, u.Active)

	_, err = repo.GetUserByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_InvalidUUID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetUserByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListUsers(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC\s+LIMIT\s+\$1\s+OFFSET\s+\$2$`).
		WithArgs(16, 32).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-2", "bob", "hash", "SECRET", "bob@example.com", false, now, now).
			AddRow("u-1", "alice", "hash", "SECRET", "alice@example.com", true, now, now))

	users, err := repo.ListUsers(context.Background(), 16, 32)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "bob", users[0].Username)
	require.False(t, users[0].Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()
	email := "alice@new.example.com"

	q := `(?s)^UPDATE\s+users\s+SET`

	mock.ExpectExec(q).
		WithArgs(nil, email, nil, sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs(nil, email, nil, sqlmock.AnyArg(), "u-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rename := "bob"
	mock.ExpectExec(q).
		WithArgs(rename, nil, nil, sqlmock.AnyArg(), "u-1").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	require.NoError(t, repo.UpdateUser(context.Background(), "u-1", domain.UserPatch{Email: &email}, now))
	require.ErrorIs(t, repo.UpdateUser(context.Background(), "u-missing", domain.UserPatch{Email: &email}, now), store.ErrNotFound)
	require.ErrorIs(t, repo.UpdateUser(context.Background(), "u-1", domain.UserPatch{Username: &rename}, now), store.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)
	mock.ExpectExec(q).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteUser(context.Background(), "u-1"))
	require.ErrorIs(t, repo.DeleteUser(context.Background(), "u-1"), store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
