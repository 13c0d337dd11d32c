package trustscore

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	verificationPoints  = 20.0
	reviewMultiplier    = 8.0
	reviewCap           = 40.0
	verifiedReviewBonus = 2.0
	reviewBonusCap      = 10.0
	documentPoints      = 5.0
	documentCap         = 20.0
	paymentPoints       = 3.0
	paymentCap          = 15.0
	fraudPenaltyPoints  = 5.0
	fraudPenaltyCap     = 25.0
	verifiedWeight      = 2
)

// summed in this order so rounding is stable
var factorOrder = []string{
	FactorVerification,
	FactorReviews,
	FactorReviewBonus,
	FactorDocuments,
	FactorPayments,
	FactorFraudPenalty,
}

// Calculate derives the trust score from the given inputs. It is pure; the
// same inputs always give the same score, grade and factors.
func Calculate(businessID uuid.UUID, in TrustInputs, at time.Time) *TrustScore {
	factors := map[string]float64{
		FactorVerification: 0,
		FactorReviews:      0,
		FactorReviewBonus:  0,
		FactorDocuments:    0,
		FactorPayments:     0,
		FactorFraudPenalty: 0,
	}

	if in.IsVerified {
		factors[FactorVerification] = verificationPoints
	}

	if avg, ok := weightedAverageRating(in); ok {
		factors[FactorReviews] = math.Min(avg*reviewMultiplier, reviewCap)
	}
	factors[FactorReviewBonus] = math.Min(float64(nonNegative(in.VerifiedReviews))*verifiedReviewBonus, reviewBonusCap)
	factors[FactorDocuments] = math.Min(float64(nonNegative(in.VerifiedDocuments))*documentPoints, documentCap)
	factors[FactorPayments] = math.Min(float64(nonNegative(in.VerifiedPayments))*paymentPoints, paymentCap)
	factors[FactorFraudPenalty] = -math.Min(float64(nonNegative(in.ResolvedFraudReports))*fraudPenaltyPoints, fraudPenaltyCap)

	total := 0.0
	for _, key := range factorOrder {
		total += factors[key]
	}
	score := int(math.Round(math.Max(0, math.Min(100, total))))

	return &TrustScore{
		BusinessID:   businessID,
		Score:        score,
		Grade:        GradeFor(score),
		Factors:      factors,
		CalculatedAt: at,
	}
}

// GradeFor maps a 0..100 score to its letter grade
func GradeFor(score int) Grade {
	switch {
	case score >= 90:
		return GradeAPlus
	case score >= 80:
		return GradeA
	case score >= 70:
		return GradeB
	case score >= 60:
		return GradeC
	case score >= 50:
		return GradeD
	default:
		return GradeF
	}
}

// verified reviews count twice
func weightedAverageRating(in TrustInputs) (float64, bool) {
	verified := nonNegative(in.VerifiedReviews)
	unverified := nonNegative(in.UnverifiedReviews)

	weight := verified*verifiedWeight + unverified
	if weight == 0 {
		return 0, false
	}

	sum := float64(in.VerifiedRatingSum)*verifiedWeight + float64(in.UnverifiedRatingSum)
	avg := sum / float64(weight)
	return math.Max(0, math.Min(5, avg)), true
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
