package reputation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// AnalysisWindow is how far back a user's history is inspected
	AnalysisWindow = 30 * 24 * time.Hour

	rapidPostingGap         = 5 * time.Minute
	duplicateSimilarity     = 0.8
	unverifiedVolumeLimit   = 10
	frequencyLimitPerDay    = 2.0
	lowVerificationRate     = 0.2
	lowVerificationMinCount = 5
	extremeRatingMinCount   = 3
	flagThreshold           = 50
	highThreshold           = 65
	criticalThreshold       = 80
)

// AnalyzeReviews scores the reviews a user posted inside the window ending at now.
// Reviews outside the window are ignored.
func AnalyzeReviews(userID uuid.UUID, reviews []ReviewRecord, now time.Time) *ReviewPatternAnalysis {
	analysis := &ReviewPatternAnalysis{
		UserID:             userID,
		SuspiciousPatterns: []string{},
	}

	windowStart := now.Add(-AnalysisWindow)
	inWindow := make([]ReviewRecord, 0, len(reviews))
	for _, r := range reviews {
		if r.CreatedAt.Before(windowStart) || r.CreatedAt.After(now) {
			continue
		}
		inWindow = append(inWindow, r)
	}
	if len(inWindow) == 0 {
		return analysis
	}

	oldest := inWindow[0].CreatedAt
	ratingSum := 0
	allExtreme := true
	for _, r := range inWindow {
		if r.IsVerified {
			analysis.VerifiedReviews++
		} else {
			analysis.UnverifiedReviews++
		}
		ratingSum += r.Rating
		if r.Rating != 1 && r.Rating != 5 {
			allExtreme = false
		}
		if r.CreatedAt.Before(oldest) {
			oldest = r.CreatedAt
		}
	}

	total := len(inWindow)
	analysis.TotalReviews = total
	analysis.AverageRating = clampFloat(float64(ratingSum)/float64(total), 0, 5)

	days := math.Floor(now.Sub(oldest).Hours() / 24)
	analysis.ReviewFrequency = float64(total) / math.Max(1, days)

	risk := 0
	flag := func(points int, pattern string) {
		risk += points
		analysis.SuspiciousPatterns = append(analysis.SuspiciousPatterns, pattern)
	}

	if analysis.UnverifiedReviews > unverifiedVolumeLimit {
		flag(30, fmt.Sprintf("High volume of unverified reviews (%d)", analysis.UnverifiedReviews))
	}
	if analysis.ReviewFrequency > frequencyLimitPerDay {
		flag(25, fmt.Sprintf("High review frequency (%.1f reviews/day)", analysis.ReviewFrequency))
	}
	if total > lowVerificationMinCount {
		rate := float64(analysis.VerifiedReviews) / float64(total)
		if rate < lowVerificationRate {
			flag(20, fmt.Sprintf("Low verification rate (%.0f%%)", rate*100))
		}
	}
	if allExtreme && total > extremeRatingMinCount {
		flag(15, "Only extreme ratings (1 or 5 stars)")
	}
	if pairs := rapidPairs(inWindow); pairs > 0 {
		flag(10*pairs, fmt.Sprintf("Reviews posted within 5 minutes of each other (%d pairs)", pairs))
	}
	if pairs := duplicatePairs(inWindow); pairs > 0 {
		flag(5*pairs, fmt.Sprintf("Near-duplicate review text (%d pairs)", pairs))
	}

	analysis.RiskScore = clampScore(risk)
	return analysis
}

// DecideFlagging maps a pattern analysis to a risk tier and recommended action
func DecideFlagging(analysis *ReviewPatternAnalysis) *FlaggingDecision {
	if analysis == nil {
		analysis = &ReviewPatternAnalysis{}
	}

	level := LevelForScore(analysis.RiskScore)
	patterns := append([]string{}, analysis.SuspiciousPatterns...)
	return &FlaggingDecision{
		ShouldFlag:         analysis.RiskScore >= flagThreshold,
		RiskLevel:          level,
		Recommendation:     level.Recommendation(),
		RiskScore:          analysis.RiskScore,
		SuspiciousPatterns: patterns,
	}
}

// LevelForScore returns the tier for a 0..100 risk score
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= criticalThreshold:
		return RiskLevelCritical
	case score >= highThreshold:
		return RiskLevelHigh
	case score >= flagThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// SpamLevel returns the penalty tier for an unverified-review count, or false
// when the count does not warrant a penalty.
func SpamLevel(unverified int) (RiskLevel, bool) {
	switch {
	case unverified > 50:
		return RiskLevelCritical, true
	case unverified > 30:
		return RiskLevelHigh, true
	case unverified > 20:
		return RiskLevelMedium, true
	case unverified > unverifiedVolumeLimit:
		return RiskLevelLow, true
	default:
		return "", false
	}
}

// JaccardSimilarity compares the lower-cased whitespace token sets of a and b
func JaccardSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func rapidPairs(reviews []ReviewRecord) int {
	pairs := 0
	for i := 0; i < len(reviews); i++ {
		for j := i + 1; j < len(reviews); j++ {
			gap := reviews[i].CreatedAt.Sub(reviews[j].CreatedAt)
			if gap < 0 {
				gap = -gap
			}
			if gap <= rapidPostingGap {
				pairs++
			}
		}
	}
	return pairs
}

func duplicatePairs(reviews []ReviewRecord) int {
	pairs := 0
	for i := 0; i < len(reviews); i++ {
		for j := i + 1; j < len(reviews); j++ {
			if JaccardSimilarity(reviews[i].Content, reviews[j].Content) > duplicateSimilarity {
				pairs++
			}
		}
	}
	return pairs
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
