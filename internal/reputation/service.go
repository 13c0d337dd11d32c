package reputation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/eventbus"
	"github.com/richxcame/crediscore/pkg/logger"
	"go.uber.org/zap"
)

// Service analyses review behaviour and applies flags and penalties
type Service struct {
	repo RepositoryInterface
	bus  eventbus.Bus
	now  func() time.Time
}

// NewService creates a new reputation service. bus may be nil.
func NewService(repo RepositoryInterface, bus eventbus.Bus) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		now:  time.Now,
	}
}

// AnalyzeUserReviewPatterns inspects the user's reviews from the last 30 days
func (s *Service) AnalyzeUserReviewPatterns(ctx context.Context, userID uuid.UUID) (*ReviewPatternAnalysis, error) {
	now := s.now()
	reviews, err := s.repo.GetUserReviewsSince(ctx, userID, now.Add(-AnalysisWindow))
	if err != nil {
		return nil, common.NewInternalError("failed to load review history", err)
	}

	return AnalyzeReviews(userID, reviews, now), nil
}

// ShouldFlagUser analyses the user and returns the flagging decision without applying it
func (s *Service) ShouldFlagUser(ctx context.Context, userID uuid.UUID) (*FlaggingDecision, error) {
	analysis, err := s.AnalyzeUserReviewPatterns(ctx, userID)
	if err != nil {
		return nil, err
	}
	return DecideFlagging(analysis), nil
}

// FlagUser flags the user at level and deducts the matching reputation penalty
func (s *Service) FlagUser(ctx context.Context, userID uuid.UUID, reason string, level RiskLevel) (*FlagResult, error) {
	if !level.Valid() {
		return nil, common.NewBadRequestError("invalid risk level", nil)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, common.NewBadRequestError("flag reason is required", nil)
	}

	result, err := s.repo.FlagUser(ctx, userID, reason, level, level.Penalty(), s.now().UTC())
	if err != nil {
		return nil, common.NewInternalError("failed to flag user", err)
	}
	if result == nil {
		return nil, common.NewNotFoundError("user not found", nil)
	}

	recordFlag(level)
	logger.WithContext(ctx).Info("user flagged",
		zap.String("user_id", userID.String()),
		zap.String("risk_level", string(level)),
		zap.Int("penalty", result.Penalty),
		zap.Int("reputation", result.Reputation),
	)

	s.publishFlagged(ctx, result, reason)
	return result, nil
}

// ReduceCredibilityForSpam penalises users whose unverified review volume in
// the last 30 days alone warrants it. No penalty is applied at 10 or fewer.
func (s *Service) ReduceCredibilityForSpam(ctx context.Context, userID uuid.UUID) (*SpamPenaltyResult, error) {
	count, err := s.repo.GetUnverifiedReviewCount(ctx, userID, s.now().Add(-AnalysisWindow))
	if err != nil {
		return nil, common.NewInternalError("failed to count unverified reviews", err)
	}

	result := &SpamPenaltyResult{UserID: userID, UnverifiedReviews: count}
	level, ok := SpamLevel(count)
	if !ok {
		return result, nil
	}

	reputation, err := s.repo.DeductReputation(ctx, userID, level.Penalty())
	if err != nil {
		return nil, common.NewInternalError("failed to apply spam penalty", err)
	}
	if reputation == nil {
		return nil, common.NewNotFoundError("user not found", nil)
	}

	result.Applied = true
	result.RiskLevel = level
	result.Penalty = level.Penalty()
	result.Reputation = reputation

	recordSpamPenalty(level)
	logger.WithContext(ctx).Info("spam penalty applied",
		zap.String("user_id", userID.String()),
		zap.Int("unverified_reviews", count),
		zap.String("risk_level", string(level)),
		zap.Int("reputation", *reputation),
	)
	return result, nil
}

// EvaluateUser analyses the user and flags them when the policy says so.
// A user already flagged at the same or a higher level is left untouched, so
// re-evaluating an unchanged history never stacks penalties.
func (s *Service) EvaluateUser(ctx context.Context, userID uuid.UUID) (*Evaluation, error) {
	analysis, err := s.AnalyzeUserReviewPatterns(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := DecideFlagging(analysis)
	eval := &Evaluation{Analysis: analysis, Decision: decision}
	if !decision.ShouldFlag {
		return eval, nil
	}

	status, err := s.repo.GetFlagStatus(ctx, userID)
	if err != nil {
		return nil, common.NewInternalError("failed to load flag status", err)
	}
	if status == nil {
		return nil, common.NewNotFoundError("user not found", nil)
	}
	if status.IsFlagged && !decision.RiskLevel.Exceeds(status.RiskLevel) {
		eval.AlreadyFlagged = true
		logger.WithContext(ctx).Debug("user already flagged",
			zap.String("user_id", userID.String()),
			zap.String("current_level", string(status.RiskLevel)),
			zap.String("decided_level", string(decision.RiskLevel)),
		)
		return eval, nil
	}

	flag, err := s.FlagUser(ctx, userID, flagReason(decision), decision.RiskLevel)
	if err != nil {
		return nil, err
	}
	eval.Flag = flag
	return eval, nil
}

// ListFlaggedUsers pages through flagged users
func (s *Service) ListFlaggedUsers(ctx context.Context, limit, offset int) ([]*FlaggedUser, int64, error) {
	users, total, err := s.repo.ListFlaggedUsers(ctx, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list flagged users", err)
	}
	return users, total, nil
}

func (s *Service) publishFlagged(ctx context.Context, result *FlagResult, reason string) {
	if s.bus == nil {
		return
	}

	evt := eventbus.NewEvent(eventbus.SubjectUserFlagged, result.UserID.String())
	evt.UserID = result.UserID.String()
	evt.Data = map[string]interface{}{
		"risk_level": string(result.RiskLevel),
		"reason":     reason,
		"penalty":    result.Penalty,
		"reputation": result.Reputation,
	}
	if err := s.bus.Publish(ctx, eventbus.SubjectUserFlagged, evt); err != nil {
		logger.WithContext(ctx).Warn("failed to publish user.flagged",
			zap.String("user_id", result.UserID.String()),
			zap.Error(err),
		)
	}
}

func flagReason(decision *FlaggingDecision) string {
	if len(decision.SuspiciousPatterns) == 0 {
		return "Suspicious review activity"
	}
	return "Suspicious review activity: " + strings.Join(decision.SuspiciousPatterns, "; ")
}
