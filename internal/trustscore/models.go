package trustscore

import (
	"time"

	"github.com/google/uuid"
)

// Grade is the letter band of a trust score
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Factor keys
const (
	FactorVerification = "verification"
	FactorReviews      = "reviews"
	FactorReviewBonus  = "reviewBonus"
	FactorDocuments    = "documents"
	FactorPayments     = "payments"
	FactorFraudPenalty = "fraudPenalty"
)

// TrustInputs are the persisted counts a trust score is derived from
type TrustInputs struct {
	IsVerified           bool  `json:"is_verified"`
	VerifiedReviews      int   `json:"verified_reviews"`
	UnverifiedReviews    int   `json:"unverified_reviews"`
	VerifiedRatingSum    int64 `json:"verified_rating_sum"`
	UnverifiedRatingSum  int64 `json:"unverified_rating_sum"`
	VerifiedDocuments    int   `json:"verified_documents"`
	VerifiedPayments     int   `json:"verified_payments"`
	ResolvedFraudReports int   `json:"resolved_fraud_reports"`
}

// TrustScore is the business-level trust aggregate. One row per business.
type TrustScore struct {
	BusinessID   uuid.UUID          `json:"business_id" db:"business_id"`
	Score        int                `json:"score" db:"score"`
	Grade        Grade              `json:"grade" db:"grade"`
	Factors      map[string]float64 `json:"factors" db:"factors"`
	CalculatedAt time.Time          `json:"calculated_at" db:"calculated_at"`
}
