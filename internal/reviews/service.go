package reviews

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/crediscore/internal/fraud"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/eventbus"
	"github.com/richxcame/crediscore/pkg/logger"
	"go.uber.org/zap"
)

// Service evaluates submitted reviews
type Service struct {
	repo     RepositoryInterface
	detector FraudDetector
	users    UserEvaluator
	bus      eventbus.Bus
	now      func() time.Time
}

// NewService creates a new review evaluation service. users and bus may be nil.
func NewService(repo RepositoryInterface, detector FraudDetector, users UserEvaluator, bus eventbus.Bus) *Service {
	return &Service{
		repo:     repo,
		detector: detector,
		users:    users,
		bus:      bus,
		now:      time.Now,
	}
}

// EvaluateReview scores a review for fraud, stores its credibility and
// verification state, then re-evaluates the reviewer.
func (s *Service) EvaluateReview(ctx context.Context, reviewID uuid.UUID) (*EvaluationResult, error) {
	log := logger.WithContext(ctx).With(zap.String("review_id", reviewID.String()))

	rc, err := s.repo.GetReviewContext(ctx, reviewID)
	if err != nil {
		return nil, common.NewInternalError("failed to load review", err)
	}
	if rc == nil {
		return nil, common.NewNotFoundError("review not found", nil)
	}
	review := rc.Review

	verdict, err := s.detector.Detect(ctx, &fraud.DetectRequest{
		ReviewText:      review.Content,
		ReceiptData:     review.ReceiptData,
		BusinessDetails: rc.Business,
		UserReputation:  rc.ReviewerReputation,
	})
	if errors.Is(err, fraud.ErrMissingBusinessDetails) {
		return nil, common.NewBadRequestError("review's business has no name", err)
	}
	if err != nil {
		return nil, common.NewInternalError("failed to check review for fraud", err)
	}

	record := &EvaluationRecord{
		ReviewID:    review.ID,
		Credibility: Credibility(verdict),
		IsVerified:  review.ReceiptData != nil && !verdict.IsFraudulent,
		Verdict:     verdict,
		EvaluatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveEvaluation(ctx, record); err != nil {
		return nil, common.NewInternalError("failed to save review evaluation", err)
	}

	recordEvaluation(record.IsVerified, record.Credibility)
	log.Info("review evaluated",
		zap.Int("credibility", record.Credibility),
		zap.Bool("is_verified", record.IsVerified),
		zap.Bool("is_fraudulent", verdict.IsFraudulent),
		zap.Int("risk_score", verdict.RiskScore),
	)

	result := &EvaluationResult{
		ReviewID:    review.ID,
		BusinessID:  review.BusinessID,
		UserID:      review.UserID,
		Credibility: record.Credibility,
		IsVerified:  record.IsVerified,
		Verdict:     verdict,
		EvaluatedAt: record.EvaluatedAt,
	}

	s.publishCreated(ctx, result)

	if s.users != nil {
		eval, err := s.users.EvaluateUser(ctx, review.UserID)
		if err != nil {
			log.Warn("reviewer evaluation failed",
				zap.String("user_id", review.UserID.String()),
				zap.Error(err),
			)
		} else {
			result.Reviewer = eval
		}
	}

	return result, nil
}

// FraudHealth reports the fraud-scoring service status
func (s *Service) FraudHealth(ctx context.Context) (*fraud.HealthStatus, error) {
	status, err := s.detector.HealthCheck(ctx)
	if err != nil {
		return status, common.NewAppError(http.StatusServiceUnavailable, "fraud service unavailable", err)
	}
	return status, nil
}

func (s *Service) publishCreated(ctx context.Context, result *EvaluationResult) {
	if s.bus == nil {
		return
	}

	evt := eventbus.NewEvent(eventbus.SubjectReviewCreated, result.ReviewID.String())
	evt.BusinessID = result.BusinessID.String()
	evt.UserID = result.UserID.String()
	evt.Data = map[string]interface{}{
		"credibility":   result.Credibility,
		"is_verified":   result.IsVerified,
		"is_fraudulent": result.Verdict.IsFraudulent,
	}
	if err := s.bus.Publish(ctx, eventbus.SubjectReviewCreated, evt); err != nil {
		logger.WithContext(ctx).Warn("failed to publish review.created",
			zap.String("review_id", result.ReviewID.String()),
			zap.Error(err),
		)
	}
}
