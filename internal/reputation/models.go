package reputation

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel classifies how suspicious a user's review behaviour is
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// Recommendation is the action bound to a risk level
type Recommendation string

const (
	RecommendMonitor Recommendation = "MONITOR"
	RecommendFlag    Recommendation = "FLAG"
	RecommendSuspend Recommendation = "SUSPEND"
	RecommendDelete  Recommendation = "DELETE"
)

// Valid reports whether l is one of the known levels
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical:
		return true
	}
	return false
}

// Penalty is the reputation deducted when a user is flagged at this level
func (l RiskLevel) Penalty() int {
	switch l {
	case RiskLevelMedium:
		return 15
	case RiskLevelHigh:
		return 30
	case RiskLevelCritical:
		return 50
	default:
		return 5
	}
}

// Exceeds reports whether l is a strictly more severe level than other.
// Unknown levels rank below LOW.
func (l RiskLevel) Exceeds(other RiskLevel) bool {
	return l.rank() > other.rank()
}

func (l RiskLevel) rank() int {
	switch l {
	case RiskLevelLow:
		return 1
	case RiskLevelMedium:
		return 2
	case RiskLevelHigh:
		return 3
	case RiskLevelCritical:
		return 4
	}
	return 0
}

// Recommendation returns the action bound to the level
func (l RiskLevel) Recommendation() Recommendation {
	switch l {
	case RiskLevelMedium:
		return RecommendFlag
	case RiskLevelHigh:
		return RecommendSuspend
	case RiskLevelCritical:
		return RecommendDelete
	default:
		return RecommendMonitor
	}
}

// ReviewRecord is one review from a user's history
type ReviewRecord struct {
	ID         uuid.UUID `json:"id" db:"id"`
	BusinessID uuid.UUID `json:"business_id" db:"business_id"`
	Rating     int       `json:"rating" db:"rating"`
	Content    string    `json:"content" db:"content"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ReviewPatternAnalysis summarises a user's recent review behaviour
type ReviewPatternAnalysis struct {
	UserID             uuid.UUID `json:"userId"`
	TotalReviews       int       `json:"totalReviews"`
	VerifiedReviews    int       `json:"verifiedReviews"`
	UnverifiedReviews  int       `json:"unverifiedReviews"`
	AverageRating      float64   `json:"averageRating"`
	ReviewFrequency    float64   `json:"reviewFrequency"`
	SuspiciousPatterns []string  `json:"suspiciousPatterns"`
	RiskScore          int       `json:"riskScore"`
}

// FlaggingDecision is the policy outcome for a pattern analysis
type FlaggingDecision struct {
	ShouldFlag         bool           `json:"shouldFlag"`
	RiskLevel          RiskLevel      `json:"riskLevel"`
	Recommendation     Recommendation `json:"recommendation"`
	RiskScore          int            `json:"riskScore"`
	SuspiciousPatterns []string       `json:"suspiciousPatterns"`
}

// FlagResult is the user's state after a flag or penalty was applied
type FlagResult struct {
	UserID     uuid.UUID `json:"userId"`
	RiskLevel  RiskLevel `json:"riskLevel"`
	Penalty    int       `json:"penalty"`
	Reputation int       `json:"reputation"`
	FlagCount  int       `json:"flagCount"`
	FlaggedAt  time.Time `json:"flaggedAt"`
}

// SpamPenaltyResult reports what the spam penalty path did
type SpamPenaltyResult struct {
	UserID            uuid.UUID `json:"userId"`
	UnverifiedReviews int       `json:"unverifiedReviews"`
	Applied           bool      `json:"applied"`
	RiskLevel         RiskLevel `json:"riskLevel,omitempty"`
	Penalty           int       `json:"penalty"`
	Reputation        *int      `json:"reputation,omitempty"`
}

// Evaluation is the full analyse-decide-flag outcome for one user
type Evaluation struct {
	Analysis *ReviewPatternAnalysis `json:"analysis"`
	Decision *FlaggingDecision      `json:"decision"`
	Flag     *FlagResult            `json:"flag,omitempty"`
	// AlreadyFlagged is set when the decision did not escalate an existing flag
	AlreadyFlagged bool `json:"alreadyFlagged,omitempty"`
}

// FlagStatus is the user's current flag state
type FlagStatus struct {
	IsFlagged bool
	RiskLevel RiskLevel
}

// FlaggedUser is a row of the flagged-user listing
type FlaggedUser struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Email      string     `json:"email" db:"email"`
	Name       string     `json:"name" db:"name"`
	Reputation int        `json:"reputation" db:"reputation"`
	FlagCount  int        `json:"flag_count" db:"flag_count"`
	FlagReason *string    `json:"flag_reason,omitempty" db:"flag_reason"`
	RiskLevel  *string    `json:"risk_level,omitempty" db:"risk_level"`
	FlaggedAt  *time.Time `json:"flagged_at,omitempty" db:"flagged_at"`
}

// FlagUserRequest is the body of a manual flag
type FlagUserRequest struct {
	Reason    string    `json:"reason" binding:"required,max=500"`
	RiskLevel RiskLevel `json:"risk_level" binding:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
}
