package reputation

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func review(at time.Time, rating int, verified bool, content string) ReviewRecord {
	return ReviewRecord{
		ID:         uuid.New(),
		BusinessID: uuid.New(),
		Rating:     rating,
		Content:    content,
		IsVerified: verified,
		CreatedAt:  at,
	}
}

// 15 reviews, 12 unverified, spread evenly over six days
func burstHistory() []ReviewRecord {
	start := testNow.Add(-6 * 24 * time.Hour)
	reviews := make([]ReviewRecord, 0, 15)
	for i := 0; i < 15; i++ {
		rating := 3 + i%2
		reviews = append(reviews, review(start.Add(time.Duration(i)*9*time.Hour), rating, i < 3, fmt.Sprintf("note %d", i)))
	}
	return reviews
}

func TestAnalyzeReviews_BurstOfUnverifiedReviews(t *testing.T) {
	analysis := AnalyzeReviews(uuid.New(), burstHistory(), testNow)

	assert.Equal(t, 15, analysis.TotalReviews)
	assert.Equal(t, 12, analysis.UnverifiedReviews)
	assert.Equal(t, 3, analysis.VerifiedReviews)
	assert.InDelta(t, 2.5, analysis.ReviewFrequency, 1e-9)
	assert.Equal(t, 55, analysis.RiskScore)
	assert.Len(t, analysis.SuspiciousPatterns, 2)

	decision := DecideFlagging(analysis)
	assert.True(t, decision.ShouldFlag)
	assert.Equal(t, RiskLevelMedium, decision.RiskLevel)
	assert.Equal(t, RecommendFlag, decision.Recommendation)
	assert.Equal(t, analysis.SuspiciousPatterns, decision.SuspiciousPatterns)
}

func TestAnalyzeReviews_EmptyHistory(t *testing.T) {
	analysis := AnalyzeReviews(uuid.New(), nil, testNow)

	assert.Zero(t, analysis.TotalReviews)
	assert.Zero(t, analysis.RiskScore)
	assert.Zero(t, analysis.ReviewFrequency)
	assert.NotNil(t, analysis.SuspiciousPatterns)
	assert.Empty(t, analysis.SuspiciousPatterns)
}

func TestAnalyzeReviews_IgnoresReviewsOutsideWindow(t *testing.T) {
	reviews := []ReviewRecord{
		review(testNow.Add(-31*24*time.Hour), 5, false, "old one"),
		review(testNow.Add(-2*24*time.Hour), 4, true, "recent one"),
	}

	analysis := AnalyzeReviews(uuid.New(), reviews, testNow)
	assert.Equal(t, 1, analysis.TotalReviews)
	assert.Equal(t, 4.0, analysis.AverageRating)
	assert.InDelta(t, 0.5, analysis.ReviewFrequency, 1e-9)
}

func TestAnalyzeReviews_Signals(t *testing.T) {
	day := 24 * time.Hour

	t.Run("rapid posting counts every close pair", func(t *testing.T) {
		base := testNow.Add(-3 * day)
		reviews := []ReviewRecord{
			review(base, 3, true, "first visit was fine"),
			review(base.Add(2*time.Minute), 4, true, "the coffee is strong"),
			review(base.Add(4*time.Minute), 3, true, "parking was hard to find"),
		}
		analysis := AnalyzeReviews(uuid.New(), reviews, testNow)
		assert.Equal(t, 30, analysis.RiskScore)
		assert.Contains(t, analysis.SuspiciousPatterns, "Reviews posted within 5 minutes of each other (3 pairs)")
	})

	t.Run("near duplicate text", func(t *testing.T) {
		reviews := []ReviewRecord{
			review(testNow.Add(-3*day), 4, true, "Great food and friendly staff"),
			review(testNow.Add(-1*day), 3, true, "great FOOD and friendly staff"),
		}
		analysis := AnalyzeReviews(uuid.New(), reviews, testNow)
		assert.Equal(t, 5, analysis.RiskScore)
		assert.Contains(t, analysis.SuspiciousPatterns, "Near-duplicate review text (1 pairs)")
	})

	t.Run("only extreme ratings", func(t *testing.T) {
		reviews := []ReviewRecord{
			review(testNow.Add(-3*day), 5, true, "loved the place"),
			review(testNow.Add(-2*day), 1, true, "cold food tonight"),
			review(testNow.Add(-1*day), 5, true, "quick delivery today"),
			review(testNow.Add(-time.Hour), 5, true, "nice new menu"),
		}
		analysis := AnalyzeReviews(uuid.New(), reviews, testNow)
		assert.Equal(t, 15, analysis.RiskScore)
		assert.Equal(t, []string{"Only extreme ratings (1 or 5 stars)"}, analysis.SuspiciousPatterns)
	})

	t.Run("three extreme ratings are not enough", func(t *testing.T) {
		reviews := []ReviewRecord{
			review(testNow.Add(-3*day), 5, true, "loved the place"),
			review(testNow.Add(-2*day), 1, true, "cold food tonight"),
			review(testNow.Add(-1*day), 5, true, "quick delivery today"),
		}
		assert.Zero(t, AnalyzeReviews(uuid.New(), reviews, testNow).RiskScore)
	})

	t.Run("low verification rate", func(t *testing.T) {
		reviews := make([]ReviewRecord, 0, 6)
		for i := 0; i < 6; i++ {
			reviews = append(reviews, review(testNow.Add(-time.Duration(i+1)*day), 3, i == 0, fmt.Sprintf("entry %d", i)))
		}
		analysis := AnalyzeReviews(uuid.New(), reviews, testNow)
		assert.Equal(t, 20, analysis.RiskScore)
		assert.Contains(t, analysis.SuspiciousPatterns, "Low verification rate (17%)")
	})

	t.Run("risk is clamped to 100", func(t *testing.T) {
		base := testNow.Add(-time.Hour)
		reviews := make([]ReviewRecord, 0, 8)
		for i := 0; i < 8; i++ {
			reviews = append(reviews, review(base.Add(time.Duration(i)*time.Second), 5, false, "same text every time"))
		}
		analysis := AnalyzeReviews(uuid.New(), reviews, testNow)
		assert.Equal(t, 100, analysis.RiskScore)
		assert.Equal(t, RiskLevelCritical, DecideFlagging(analysis).RiskLevel)
	})
}

func TestAnalyzeReviews_CountsAddUp(t *testing.T) {
	for n := 0; n < 40; n++ {
		reviews := make([]ReviewRecord, 0, n)
		for i := 0; i < n; i++ {
			at := testNow.Add(-time.Duration(i*17) * time.Hour)
			reviews = append(reviews, review(at, 1+i%5, i%3 == 0, fmt.Sprintf("text %d", i)))
		}

		analysis := AnalyzeReviews(uuid.New(), reviews, testNow)
		require.Equal(t, analysis.TotalReviews, analysis.VerifiedReviews+analysis.UnverifiedReviews)
		require.GreaterOrEqual(t, analysis.RiskScore, 0)
		require.LessOrEqual(t, analysis.RiskScore, 100)
		require.GreaterOrEqual(t, analysis.AverageRating, 0.0)
		require.LessOrEqual(t, analysis.AverageRating, 5.0)
	}
}

func TestDecideFlagging_Thresholds(t *testing.T) {
	tests := []struct {
		score      int
		wantFlag   bool
		wantLevel  RiskLevel
		wantAction Recommendation
	}{
		{0, false, RiskLevelLow, RecommendMonitor},
		{49, false, RiskLevelLow, RecommendMonitor},
		{50, true, RiskLevelMedium, RecommendFlag},
		{64, true, RiskLevelMedium, RecommendFlag},
		{65, true, RiskLevelHigh, RecommendSuspend},
		{79, true, RiskLevelHigh, RecommendSuspend},
		{80, true, RiskLevelCritical, RecommendDelete},
		{100, true, RiskLevelCritical, RecommendDelete},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %d", tt.score), func(t *testing.T) {
			d := DecideFlagging(&ReviewPatternAnalysis{RiskScore: tt.score})
			assert.Equal(t, tt.wantFlag, d.ShouldFlag)
			assert.Equal(t, tt.wantLevel, d.RiskLevel)
			assert.Equal(t, tt.wantAction, d.Recommendation)
			assert.NotNil(t, d.SuspiciousPatterns)
		})
	}
}

func TestRiskLevel_Penalty(t *testing.T) {
	assert.Equal(t, 5, RiskLevelLow.Penalty())
	assert.Equal(t, 15, RiskLevelMedium.Penalty())
	assert.Equal(t, 30, RiskLevelHigh.Penalty())
	assert.Equal(t, 50, RiskLevelCritical.Penalty())
	assert.False(t, RiskLevel("SEVERE").Valid())
}

func TestSpamLevel(t *testing.T) {
	tests := []struct {
		count int
		want  RiskLevel
		ok    bool
	}{
		{0, "", false},
		{10, "", false},
		{11, RiskLevelLow, true},
		{20, RiskLevelLow, true},
		{21, RiskLevelMedium, true},
		{31, RiskLevelHigh, true},
		{50, RiskLevelHigh, true},
		{51, RiskLevelCritical, true},
	}

	for _, tt := range tests {
		level, ok := SpamLevel(tt.count)
		assert.Equal(t, tt.ok, ok, "count %d", tt.count)
		assert.Equal(t, tt.want, level, "count %d", tt.count)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, JaccardSimilarity("Great Food", "great food"))
	assert.InDelta(t, 1.0/3.0, JaccardSimilarity("a b", "b c"), 1e-9)
	assert.Zero(t, JaccardSimilarity("", "anything"))
	assert.Zero(t, JaccardSimilarity("   ", "  "))
}
