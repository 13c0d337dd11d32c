package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/richxcame/crediscore/pkg/resilience"
)

var retryablePgCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"53000": true, // insufficient_resources
	"53300": true, // too_many_connections
	"53400": true, // configuration_limit_exceeded
	"08000": true, // connection_exception
	"08003": true, // connection_does_not_exist
	"08006": true, // connection_failure
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
	"58000": true, // system_error
	"XX000": true, // internal_error
}

var retryableMessages = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"temporary failure",
	"timeout",
	"too many connections",
	"server closed",
	"unexpected eof",
}

// IsRetryable reports whether a query error is transient
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return retryablePgCodes[pgErr.Code]
	}

	msg := strings.ToLower(err.Error())
	for _, m := range retryableMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsRolledBack reports whether the server aborted the statement, so nothing
// it wrote can have been committed.
func IsRolledBack(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// WithRetry runs an idempotent write with a short retry budget for transient failures
func WithRetry(ctx context.Context, op func(ctx context.Context) error) error {
	return retry(ctx, IsRetryable, op)
}

// WithRetryOnRollback retries only serialization failures and deadlocks. Use
// it for non-idempotent writes (counter increments), where a connection error
// may arrive after the statement committed.
func WithRetryOnRollback(ctx context.Context, op func(ctx context.Context) error) error {
	return retry(ctx, IsRolledBack, op)
}

func retry(ctx context.Context, retryable func(error) bool, op func(ctx context.Context) error) error {
	cfg := resilience.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    50 * time.Millisecond,
		MaxBackoff:        500 * time.Millisecond,
		BackoffMultiplier: 2,
		EnableJitter:      true,
		RetryableChecker:  retryable,
	}

	_, err := resilience.Retry(ctx, cfg, func(ctx context.Context) (interface{}, error) {
		return nil, op(ctx)
	})
	return err
}
