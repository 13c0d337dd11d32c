package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable_PgCodes(t *testing.T) {
	retryable := []string{"40001", "40P01", "55P03", "53000", "53300", "53400", "08000", "08003", "08006", "57P01", "57P02", "57P03", "58000", "XX000"}
	for _, code := range retryable {
		assert.True(t, IsRetryable(&pgconn.PgError{Code: code}), "code %s", code)
	}

	permanent := []string{"53100", "53200", "23505", "23503", "22001", "42601", "42P01"}
	for _, code := range permanent {
		assert.False(t, IsRetryable(&pgconn.PgError{Code: code}), "code %s", code)
	}
}

func TestIsRetryable_Messages(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(fmt.Errorf("query: %w", context.DeadlineExceeded)))

	assert.True(t, IsRetryable(errors.New("dial tcp: Connection Refused")))
	assert.True(t, IsRetryable(errors.New("unexpected EOF")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40001"})))
	assert.False(t, IsRetryable(errors.New("relation does not exist")))
}

func TestWithRetry(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "40P01"}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)

	attempts = 0
	err = WithRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		return &pgconn.PgError{Code: "23505"}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestIsRolledBack(t *testing.T) {
	assert.True(t, IsRolledBack(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRolledBack(fmt.Errorf("flag: %w", &pgconn.PgError{Code: "40P01"})))

	assert.False(t, IsRolledBack(&pgconn.PgError{Code: "08006"}))
	assert.False(t, IsRolledBack(errors.New("read tcp: connection reset by peer")))
	assert.False(t, IsRolledBack(errors.New("i/o timeout")))
	assert.False(t, IsRolledBack(nil))
}

func TestWithRetryOnRollback(t *testing.T) {
	attempts := 0
	err := WithRetryOnRollback(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)

	// a dropped connection may hide a committed increment
	for _, failure := range []error{
		&pgconn.PgError{Code: "08006"},
		errors.New("read tcp 10.0.0.2:5432: connection reset by peer"),
		errors.New("timeout: context deadline"),
	} {
		attempts = 0
		err = WithRetryOnRollback(context.Background(), func(ctx context.Context) error {
			attempts++
			return failure
		})
		assert.Error(t, err)
		assert.Equal(t, 1, attempts, "%v", failure)
	}
}

func TestRunMigrations_RequiresArguments(t *testing.T) {
	assert.Error(t, RunMigrations("", "file://migrations"))
	assert.Error(t, RunMigrations("postgres://localhost/db", ""))
}

func TestClose_NilPool(t *testing.T) {
	Close(nil)
}
