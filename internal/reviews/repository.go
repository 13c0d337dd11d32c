package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/crediscore/internal/fraud"
	"github.com/richxcame/crediscore/pkg/database"
)

// Repository handles review persistence
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new reviews repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetReviewContext loads a review with its business and the reviewer's
// reputation. A missing review yields nil, nil.
func (r *Repository) GetReviewContext(ctx context.Context, reviewID uuid.UUID) (*ReviewContext, error) {
	query := `
		SELECT r.id, r.user_id, r.business_id, r.rating, COALESCE(r.content, ''),
			   r.receipt_data, r.is_verified, r.created_at,
			   b.name, b.address, b.phone, b.email,
			   u.reputation
		FROM reviews r
		JOIN businesses b ON b.id = r.business_id
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`

	review := &Review{}
	rc := &ReviewContext{Review: review}
	var receiptJSON []byte

	err := r.db.QueryRow(ctx, query, reviewID).Scan(
		&review.ID, &review.UserID, &review.BusinessID, &review.Rating, &review.Content,
		&receiptJSON, &review.IsVerified, &review.CreatedAt,
		&rc.Business.Name, &rc.Business.Address, &rc.Business.Phone, &rc.Business.Email,
		&rc.ReviewerReputation,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if len(receiptJSON) > 0 && string(receiptJSON) != "null" {
		var receipt fraud.ReceiptData
		if err := json.Unmarshal(receiptJSON, &receipt); err != nil {
			return nil, fmt.Errorf("failed to decode receipt data: %w", err)
		}
		review.ReceiptData = &receipt
	}

	return rc, nil
}

// SaveEvaluation writes credibility, verification and the fraud verdict onto the review
func (r *Repository) SaveEvaluation(ctx context.Context, record *EvaluationRecord) error {
	query := `
		UPDATE reviews
		SET credibility = $2,
			is_verified = $3,
			is_fraudulent = $4,
			fraud_risk_score = $5,
			fraud_confidence = $6,
			fraud_reasons = $7,
			evaluated_at = $8
		WHERE id = $1
	`

	return database.WithRetry(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query,
			record.ReviewID,
			record.Credibility,
			record.IsVerified,
			record.Verdict.IsFraudulent,
			record.Verdict.RiskScore,
			record.Verdict.Confidence,
			record.Verdict.FraudReasons,
			record.EvaluatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save review evaluation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("review %s not found", record.ReviewID)
		}
		return nil
	})
}
