package reviews

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/crediscore/internal/fraud"
	"github.com/richxcame/crediscore/internal/reputation"
)

// RepositoryInterface defines the persistence operations for review evaluation
type RepositoryInterface interface {
	GetReviewContext(ctx context.Context, reviewID uuid.UUID) (*ReviewContext, error)
	SaveEvaluation(ctx context.Context, record *EvaluationRecord) error
}

// FraudDetector scores review content
type FraudDetector interface {
	Detect(ctx context.Context, req *fraud.DetectRequest) (*fraud.FraudVerdict, error)
	HealthCheck(ctx context.Context) (*fraud.HealthStatus, error)
}

// UserEvaluator re-checks a reviewer after a new review lands
type UserEvaluator interface {
	EvaluateUser(ctx context.Context, userID uuid.UUID) (*reputation.Evaluation, error)
}
