package trustscore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/eventbus"
	"github.com/richxcame/crediscore/pkg/logger"
	"go.uber.org/zap"
)

const (
	triggerRequest = "request"
	triggerEvent   = "event"
)

// Service calculates and serves business trust scores
type Service struct {
	repo  RepositoryInterface
	cache CacheInterface
	now   func() time.Time
}

// NewService creates a new trust score service. cache may be nil.
func NewService(repo RepositoryInterface, cache CacheInterface) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// CalculateTrustScore recomputes and stores the business's trust score.
// Recomputing an unchanged business yields the same score and grade.
func (s *Service) CalculateTrustScore(ctx context.Context, businessID uuid.UUID) (*TrustScore, error) {
	return s.calculate(ctx, businessID, triggerRequest)
}

// GetTrustScore returns the current score, reading through the cache and
// computing one if the business has never been scored.
func (s *Service) GetTrustScore(ctx context.Context, businessID uuid.UUID) (*TrustScore, error) {
	log := logger.WithContext(ctx)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, businessID)
		if err != nil {
			log.Warn("trust score cache read failed", zap.String("business_id", businessID.String()), zap.Error(err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	stored, err := s.repo.GetTrustScore(ctx, businessID)
	if err != nil {
		return nil, common.NewInternalError("failed to load trust score", err)
	}
	if stored == nil {
		return s.calculate(ctx, businessID, triggerRequest)
	}

	s.cacheScore(ctx, stored)
	return stored, nil
}

// RecomputeOnEvent recomputes the score of the business named by a bus event
func (s *Service) RecomputeOnEvent(ctx context.Context, evt eventbus.Event) error {
	if evt.BusinessID == "" {
		logger.WithContext(ctx).Debug("event carries no business, skipping trust score",
			zap.String("type", evt.Type),
			zap.String("entity_id", evt.EntityID),
		)
		return nil
	}

	businessID, err := uuid.Parse(evt.BusinessID)
	if err != nil {
		return fmt.Errorf("invalid business id %q in %s event: %w", evt.BusinessID, evt.Type, err)
	}

	_, err = s.calculate(ctx, businessID, triggerEvent)
	return err
}

func (s *Service) calculate(ctx context.Context, businessID uuid.UUID, trigger string) (*TrustScore, error) {
	inputs, err := s.repo.GetTrustInputs(ctx, businessID)
	if err != nil {
		return nil, common.NewInternalError("failed to load trust inputs", err)
	}
	if inputs == nil {
		// a removed business must not keep serving its last score
		s.dropCached(ctx, businessID)
		return nil, common.NewNotFoundError("business not found", nil)
	}

	score := Calculate(businessID, *inputs, s.now().UTC())
	if err := s.repo.UpsertTrustScore(ctx, score); err != nil {
		return nil, common.NewInternalError("failed to save trust score", err)
	}

	s.cacheScore(ctx, score)
	recordCalculation(trigger, score.Score)
	logger.WithContext(ctx).Info("trust score calculated",
		zap.String("business_id", businessID.String()),
		zap.Int("score", score.Score),
		zap.String("grade", string(score.Grade)),
		zap.String("trigger", trigger),
	)

	return score, nil
}

func (s *Service) dropCached(ctx context.Context, businessID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, businessID); err != nil {
		logger.WithContext(ctx).Warn("failed to invalidate cached trust score",
			zap.String("business_id", businessID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) cacheScore(ctx context.Context, score *TrustScore) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, score); err != nil {
		logger.WithContext(ctx).Warn("failed to cache trust score",
			zap.String("business_id", score.BusinessID.String()),
			zap.Error(err),
		)
	}
}
