package reputation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/crediscore/pkg/database"
)

// Repository handles user reputation persistence
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new reputation repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetUserReviewsSince returns a user's reviews created at or after since, oldest first
func (r *Repository) GetUserReviewsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]ReviewRecord, error) {
	query := `
		SELECT id, business_id, rating, COALESCE(content, ''), is_verified, created_at
		FROM reviews
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]ReviewRecord, 0)
	for rows.Next() {
		var rec ReviewRecord
		if err := rows.Scan(&rec.ID, &rec.BusinessID, &rec.Rating, &rec.Content, &rec.IsVerified, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

// GetUnverifiedReviewCount counts a user's unverified reviews created at or after since
func (r *Repository) GetUnverifiedReviewCount(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reviews
		WHERE user_id = $1 AND created_at >= $2 AND is_verified = false
	`

	var count int
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unverified reviews: %w", err)
	}
	return count, nil
}

// GetFlagStatus returns whether the user is flagged and at which level.
// A missing user yields nil, nil.
func (r *Repository) GetFlagStatus(ctx context.Context, userID uuid.UUID) (*FlagStatus, error) {
	var (
		status FlagStatus
		level  *string
	)
	err := r.db.QueryRow(ctx, `SELECT is_flagged, risk_level FROM users WHERE id = $1`, userID).
		Scan(&status.IsFlagged, &level)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flag status: %w", err)
	}
	if level != nil {
		status.RiskLevel = RiskLevel(*level)
	}
	return &status, nil
}

// FlagUser marks a user as flagged and deducts reputation in one statement.
// A missing user yields nil, nil.
func (r *Repository) FlagUser(ctx context.Context, userID uuid.UUID, reason string, level RiskLevel, penalty int, at time.Time) (*FlagResult, error) {
	query := `
		UPDATE users
		SET is_flagged = true,
			flag_count = flag_count + 1,
			flag_reason = $2,
			risk_level = $3,
			flagged_at = $4,
			reputation = GREATEST(reputation - $5, 0),
			updated_at = NOW()
		WHERE id = $1
		RETURNING reputation, flag_count
	`

	result := &FlagResult{
		UserID:    userID,
		RiskLevel: level,
		Penalty:   penalty,
		FlaggedAt: at,
	}

	err := database.WithRetryOnRollback(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query, userID, reason, string(level), at, penalty).
			Scan(&result.Reputation, &result.FlagCount)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to flag user: %w", err)
	}

	return result, nil
}

// DeductReputation lowers a user's reputation, never below zero, and returns
// the new value. A missing user yields nil, nil.
func (r *Repository) DeductReputation(ctx context.Context, userID uuid.UUID, penalty int) (*int, error) {
	query := `
		UPDATE users
		SET reputation = GREATEST(reputation - $2, 0),
			updated_at = NOW()
		WHERE id = $1
		RETURNING reputation
	`

	var reputation int
	err := database.WithRetryOnRollback(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query, userID, penalty).Scan(&reputation)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to deduct reputation: %w", err)
	}

	return &reputation, nil
}

// ListFlaggedUsers returns flagged users, most recently flagged first, plus the total count
func (r *Repository) ListFlaggedUsers(ctx context.Context, limit, offset int) ([]*FlaggedUser, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_flagged = true`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count flagged users: %w", err)
	}

	query := `
		SELECT id, email, name, reputation, flag_count, flag_reason, risk_level, flagged_at
		FROM users
		WHERE is_flagged = true
		ORDER BY flagged_at DESC NULLS LAST
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list flagged users: %w", err)
	}
	defer rows.Close()

	users := make([]*FlaggedUser, 0)
	for rows.Next() {
		u := &FlaggedUser{}
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Reputation, &u.FlagCount, &u.FlagReason, &u.RiskLevel, &u.FlaggedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan flagged user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate flagged users: %w", err)
	}

	return users, total, nil
}
