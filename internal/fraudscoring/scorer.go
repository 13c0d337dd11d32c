package fraudscoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/richxcame/crediscore/internal/fraud"
)

const (
	fraudThreshold       = 60
	lowQualityThreshold  = 30.0
	lowReputation        = 30
	lowReceiptConfidence = 0.5
	nameSimilarityMin    = 0.7
	addressSimilarityMin = 0.6
	maxReceiptAge        = 365 * 24 * time.Hour
)

type pattern struct {
	source string
	re     *regexp.Regexp
}

func compile(sources []string, caseInsensitive bool) []pattern {
	out := make([]pattern, len(sources))
	for i, src := range sources {
		expr := src
		if caseInsensitive {
			expr = "(?i)" + src
		}
		out[i] = pattern{source: src, re: regexp.MustCompile(expr)}
	}
	return out
}

var suspiciousPatterns = compile([]string{
	`\b(fake|scam|fraud|cheat|steal|rob)\b`,
	`\b(too good to be true|amazing|incredible|perfect)\b`,
	`\b(avoid|stay away|don't go|terrible|awful|horrible)\b`,
	`\b(paid review|sponsored|advertisement)\b`,
	`\b(click here|visit|call now|limited time)\b`,
}, true)

// case sensitive on purpose: the first one looks for shouting
var spamIndicators = compile([]string{
	`[A-Z]{3,}`,
	`!{3,}`,
	`\$+`,
	`www\.|http`,
	`\d{10,}`,
}, false)

var genericPhrases = []string{
	"good service", "nice place", "would recommend", "great experience",
	"bad service", "terrible experience", "would not recommend",
}

var (
	positiveWords = []string{"good", "great", "excellent", "amazing", "wonderful", "fantastic", "love", "best"}
	negativeWords = []string{"bad", "terrible", "awful", "horrible", "worst", "hate", "disgusting", "disappointed"}
)

var receiptDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Sentiment holds word-ratio sentiment of a review
type Sentiment struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Scorer applies the heuristic review risk model
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer using the wall clock
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// Score computes the verdict for one review
func (s *Scorer) Score(req *fraud.DetectRequest) *fraud.FraudVerdict {
	reasons := []string{}
	risk := 0

	quality := TextQualityScore(req.ReviewText)
	if quality < lowQualityThreshold {
		reasons = append(reasons, fmt.Sprintf("Low text quality score: %.1f", quality))
		risk += 25
	}

	patterns := DetectPatterns(req.ReviewText)
	reasons = append(reasons, patterns...)
	risk += len(patterns) * 10

	if AnalyzeSentiment(req.ReviewText).Neutral > 0.8 {
		reasons = append(reasons, "Overly neutral sentiment")
		risk += 15
	}

	if req.UserReputation < lowReputation {
		reasons = append(reasons, fmt.Sprintf("Low user reputation: %d", req.UserReputation))
		risk += 20
	}

	if req.ReceiptData != nil {
		issues := s.ReceiptIssues(req.ReceiptData, req.BusinessDetails)
		reasons = append(reasons, issues...)
		risk += len(issues) * 15

		if req.ReceiptData.Confidence < lowReceiptConfidence {
			reasons = append(reasons, fmt.Sprintf("Low receipt confidence: %.2f", req.ReceiptData.Confidence))
			risk += 20
		}
	}

	verdict := &fraud.FraudVerdict{
		IsFraudulent: risk > fraudThreshold,
		Confidence:   math.Min(float64(risk)/100, 1),
		FraudReasons: reasons,
		RiskScore:    risk,
	}
	return verdict.Clamp()
}

// TextQualityScore rates how much a review reads like genuine prose, 0..100
func TextQualityScore(text string) float64 {
	if len([]rune(strings.TrimSpace(text))) < 10 {
		return 0
	}

	score := 0.0

	switch n := len([]rune(text)); {
	case n >= 50 && n <= 200:
		score += 30
	case (n >= 20 && n < 50) || (n > 200 && n <= 500):
		score += 20
	default:
		score += 10
	}

	if len(strings.Split(text, ".")) > 1 {
		score += 20
	}

	words := strings.Fields(strings.ToLower(text))
	if float64(len(uniqueWords(words))) > float64(len(words))*0.7 {
		score += 20
	}

	if strings.ContainsAny(text, ".!?") {
		score += 10
	}

	for _, p := range suspiciousPatterns {
		if p.re.MatchString(text) {
			score -= 15
		}
	}
	for _, p := range spamIndicators {
		if p.re.MatchString(text) {
			score -= 10
		}
	}

	return math.Max(0, math.Min(100, score))
}

// DetectPatterns lists the suspicious traits found in a review
func DetectPatterns(text string) []string {
	found := []string{}

	words := strings.Fields(strings.ToLower(text))
	if len(words) > 10 {
		freq := make(map[string]int, len(words))
		maxFreq := 0
		for _, w := range words {
			freq[w]++
			if freq[w] > maxFreq {
				maxFreq = freq[w]
			}
		}
		if float64(maxFreq) > float64(len(words))*0.3 {
			found = append(found, "Excessive word repetition")
		}
	}

	for _, p := range suspiciousPatterns {
		if p.re.MatchString(text) {
			found = append(found, "Suspicious language pattern: "+p.source)
		}
	}
	for _, p := range spamIndicators {
		if p.re.MatchString(text) {
			found = append(found, "Spam indicator: "+p.source)
		}
	}

	lower := strings.ToLower(text)
	for _, phrase := range genericPhrases {
		if strings.Contains(lower, phrase) {
			found = append(found, "Generic review phrases")
			break
		}
	}

	return found
}

// AnalyzeSentiment counts sentiment words present relative to the word count
func AnalyzeSentiment(text string) Sentiment {
	total := len(strings.Fields(text))
	if total == 0 {
		return Sentiment{Neutral: 1}
	}

	lower := strings.ToLower(text)
	positive := countPresent(lower, positiveWords)
	negative := countPresent(lower, negativeWords)

	s := Sentiment{
		Positive: float64(positive) / float64(total),
		Negative: float64(negative) / float64(total),
	}
	s.Neutral = math.Max(0, 1-s.Positive-s.Negative)
	return s
}

// ReceiptIssues compares a receipt with the business it claims to come from
func (s *Scorer) ReceiptIssues(receipt *fraud.ReceiptData, business fraud.BusinessDetails) []string {
	issues := []string{}

	if receipt.BusinessName != nil && *receipt.BusinessName != "" && business.Name != "" {
		sim := Similarity(strings.ToLower(*receipt.BusinessName), strings.ToLower(business.Name))
		if sim < nameSimilarityMin {
			issues = append(issues, fmt.Sprintf("Business name mismatch (similarity: %.2f)", sim))
		}
	}

	if receipt.BusinessAddress != nil && *receipt.BusinessAddress != "" &&
		business.Address != nil && *business.Address != "" {
		sim := Similarity(strings.ToLower(*receipt.BusinessAddress), strings.ToLower(*business.Address))
		if sim < addressSimilarityMin {
			issues = append(issues, fmt.Sprintf("Address mismatch (similarity: %.2f)", sim))
		}
	}

	if receipt.Amount != nil && !receipt.Amount.IsPositive() {
		issues = append(issues, "Invalid amount in receipt")
	}

	if receipt.Date != nil && *receipt.Date != "" {
		date, ok := parseReceiptDate(*receipt.Date)
		now := s.now()
		switch {
		case !ok:
			issues = append(issues, "Invalid date format in receipt")
		case date.After(now):
			issues = append(issues, "Future date in receipt")
		case now.Sub(date) > maxReceiptAge:
			issues = append(issues, "Receipt too old (>1 year)")
		}
	}

	return issues
}

// Similarity is 1 - levenshtein/len(longer); empty input is 0
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	return float64(longer-levenshtein(ra, rb)) / float64(longer)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func parseReceiptDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range receiptDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func uniqueWords(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func countPresent(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
