package reviews

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/crediscore/internal/fraud"
	"github.com/richxcame/crediscore/internal/reputation"
)

// Review is a submitted business review
type Review struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	UserID      uuid.UUID          `json:"user_id" db:"user_id"`
	BusinessID  uuid.UUID          `json:"business_id" db:"business_id"`
	Rating      int                `json:"rating" db:"rating"`
	Content     string             `json:"content" db:"content"`
	ReceiptData *fraud.ReceiptData `json:"receipt_data,omitempty" db:"receipt_data"`
	IsVerified  bool               `json:"is_verified" db:"is_verified"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
}

// ReviewContext is everything needed to score a review
type ReviewContext struct {
	Review             *Review
	Business           fraud.BusinessDetails
	ReviewerReputation int
}

// EvaluationRecord is what gets written back onto the review row
type EvaluationRecord struct {
	ReviewID    uuid.UUID
	Credibility int
	IsVerified  bool
	Verdict     *fraud.FraudVerdict
	EvaluatedAt time.Time
}

// EvaluationResult is returned to callers of EvaluateReview
type EvaluationResult struct {
	ReviewID    uuid.UUID              `json:"review_id"`
	BusinessID  uuid.UUID              `json:"business_id"`
	UserID      uuid.UUID              `json:"user_id"`
	Credibility int                    `json:"credibility"`
	IsVerified  bool                   `json:"is_verified"`
	Verdict     *fraud.FraudVerdict    `json:"fraud"`
	Reviewer    *reputation.Evaluation `json:"reviewer,omitempty"`
	EvaluatedAt time.Time              `json:"evaluated_at"`
}

// Credibility maps a verdict to a 0..100 credibility score.
// Fraudulent reviews have none.
func Credibility(verdict *fraud.FraudVerdict) int {
	if verdict == nil {
		return 0
	}
	if verdict.IsFraudulent {
		return 0
	}
	score := 100 - verdict.RiskScore
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
