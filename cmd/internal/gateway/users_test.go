package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestReadOnlyUsers_ByEmail(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(stmtSelectUser).
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password"}).
			AddRow(int64(7), "Alice", "a@x.com", "$2a$10$hash"))

	u, err := NewReadOnlyUsers(mock).ByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, User{ID: 7, Name: "Alice", Email: "a@x.com", PasswordHash: "$2a$10$hash"}, u)
}

func TestReadOnlyUsers_ByEmailMissing(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(stmtSelectUser).WithArgs("nobody@x.com").WillReturnError(pgx.ErrNoRows)

	_, err := NewReadOnlyUsers(mock).ByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReadOnlyUsers_EmailExists(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(stmtUserExists).
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewReadOnlyUsers(mock).EmailExists(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInsertUsers_Insert(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(stmtInsertUser).
		WithArgs("Alice", "a@x.com", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectCommit()

	id, err := NewInsertUsers(mock).Insert(context.Background(), "Alice", "a@x.com", "hash")
	require.NoError(t, err)
	require.Equal(t, int64(11), id)
}

func TestInsertUsers_DuplicateEmailRollsBack(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(stmtInsertUser).
		WithArgs("Alice", "a@x.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	_, err := NewInsertUsers(mock).Insert(context.Background(), "Alice", "a@x.com", "hash")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestInsertUsers_OtherFaultPropagates(t *testing.T) {
	mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery(stmtInsertUser).WithArgs("Alice", "a@x.com", "hash").WillReturnError(boom)
	mock.ExpectRollback()

	_, err := NewInsertUsers(mock).Insert(context.Background(), "Alice", "a@x.com", "hash")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrDuplicate)
}
