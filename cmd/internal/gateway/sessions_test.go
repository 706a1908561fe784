package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestReadOnlySessions_Active(t *testing.T) {
	mock := newMock(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	since := created.Add(-30 * time.Minute)

	mock.ExpectQuery(stmtActiveSess).
		WithArgs("h1", since).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "session_id", "created_at"}).
			AddRow(int64(3), "h1", created))

	s, err := NewReadOnlySessions(mock).Active(context.Background(), "h1", since)
	require.NoError(t, err)
	require.Equal(t, Session{UserID: 3, TokenHash: "h1", CreatedAt: created}, s)
}

func TestReadOnlySessions_ActiveMissing(t *testing.T) {
	mock := newMock(t)
	since := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(stmtActiveSess).WithArgs("h1", since).WillReturnError(pgx.ErrNoRows)

	_, err := NewReadOnlySessions(mock).Active(context.Background(), "h1", since)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInsertSessions_Insert(t *testing.T) {
	mock := newMock(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(stmtInsertSess).WithArgs(int64(3), "h1", now).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, NewInsertSessions(mock).Insert(context.Background(), 3, "h1", now))
}

func TestInsertSessions_Duplicate(t *testing.T) {
	mock := newMock(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(stmtInsertSess).WithArgs(int64(3), "h1", now).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := NewInsertSessions(mock).Insert(context.Background(), 3, "h1", now)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestDeleteSessions_Delete(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(stmtDeleteSess).WithArgs("h1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	require.NoError(t, NewDeleteSessions(mock).Delete(context.Background(), "h1"))
}
