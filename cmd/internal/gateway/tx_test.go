package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	called := false
	err := withTx(context.Background(), mock, func(pgx.Tx) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := withTx(context.Background(), mock, func(pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestWithTx_RollsBackAndRepanics(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	require.PanicsWithValue(t, "kaboom", func() {
		_ = withTx(context.Background(), mock, func(pgx.Tx) error { panic("kaboom") })
	})
}

func TestWithTx_BeginFailure(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	called := false
	err := withTx(context.Background(), mock, func(pgx.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}
