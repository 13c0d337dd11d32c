package trustscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/crediscore/pkg/database"
)

// Repository handles trust score persistence
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new trust score repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetTrustInputs aggregates the counts a trust score needs. A missing business yields nil, nil.
func (r *Repository) GetTrustInputs(ctx context.Context, businessID uuid.UUID) (*TrustInputs, error) {
	query := `
		SELECT b.is_verified,
			   rv.verified_count, rv.unverified_count, rv.verified_sum, rv.unverified_sum,
			   d.verified_count, p.verified_count, f.resolved_count
		FROM businesses b
		CROSS JOIN LATERAL (
			SELECT COUNT(*) FILTER (WHERE is_verified) AS verified_count,
				   COUNT(*) FILTER (WHERE NOT is_verified) AS unverified_count,
				   COALESCE(SUM(rating) FILTER (WHERE is_verified), 0) AS verified_sum,
				   COALESCE(SUM(rating) FILTER (WHERE NOT is_verified), 0) AS unverified_sum
			FROM reviews
			WHERE business_id = b.id AND is_active = true
		) rv
		CROSS JOIN LATERAL (
			SELECT COUNT(*) AS verified_count
			FROM business_documents
			WHERE business_id = b.id AND is_verified = true
		) d
		CROSS JOIN LATERAL (
			SELECT COUNT(*) AS verified_count
			FROM payment_methods
			WHERE business_id = b.id AND is_verified = true
		) p
		CROSS JOIN LATERAL (
			SELECT COUNT(*) AS resolved_count
			FROM fraud_reports
			WHERE business_id = b.id AND status = 'RESOLVED'
		) f
		WHERE b.id = $1
	`

	in := &TrustInputs{}
	err := r.db.QueryRow(ctx, query, businessID).Scan(
		&in.IsVerified,
		&in.VerifiedReviews, &in.UnverifiedReviews, &in.VerifiedRatingSum, &in.UnverifiedRatingSum,
		&in.VerifiedDocuments, &in.VerifiedPayments, &in.ResolvedFraudReports,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trust inputs: %w", err)
	}

	return in, nil
}

// UpsertTrustScore writes the score, replacing any previous row for the business
func (r *Repository) UpsertTrustScore(ctx context.Context, score *TrustScore) error {
	factorsJSON, err := json.Marshal(score.Factors)
	if err != nil {
		return fmt.Errorf("failed to marshal factors: %w", err)
	}

	query := `
		INSERT INTO trust_scores (id, business_id, score, grade, factors, calculated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (business_id) DO UPDATE
		SET score = EXCLUDED.score,
			grade = EXCLUDED.grade,
			factors = EXCLUDED.factors,
			calculated_at = EXCLUDED.calculated_at,
			updated_at = NOW()
	`

	err = database.WithRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			uuid.New(),
			score.BusinessID,
			score.Score,
			string(score.Grade),
			factorsJSON,
			score.CalculatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert trust score: %w", err)
	}

	return nil
}

// GetTrustScore loads the stored score. A business without one yields nil, nil.
func (r *Repository) GetTrustScore(ctx context.Context, businessID uuid.UUID) (*TrustScore, error) {
	query := `
		SELECT business_id, score, grade, factors, calculated_at
		FROM trust_scores
		WHERE business_id = $1
	`

	score := &TrustScore{}
	var grade string
	var factorsJSON []byte
	err := r.db.QueryRow(ctx, query, businessID).Scan(
		&score.BusinessID, &score.Score, &grade, &factorsJSON, &score.CalculatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trust score: %w", err)
	}

	score.Grade = Grade(grade)
	if err := json.Unmarshal(factorsJSON, &score.Factors); err != nil {
		score.Factors = make(map[string]float64)
	}

	return score, nil
}
