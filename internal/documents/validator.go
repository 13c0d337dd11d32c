package documents

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ============================================================================
// Rule tables
// ============================================================================

var registrationFormats = []struct {
	re         *regexp.Regexp
	recognized bool
}{
	{regexp.MustCompile(`^C\.?\s?\d{6,8}$`), true},
	{regexp.MustCompile(`^PVT-[A-Z0-9]{6,8}$`), true},
	{regexp.MustCompile(`^CPR/\d{4}/\d{3,8}$`), false},
	{regexp.MustCompile(`^BN[-/]?[A-Z0-9]{6,8}$`), false},
	{regexp.MustCompile(`^[A-Z]{1,3}[-/.]?\d{6,8}$`), false},
}

var (
	taxNumberRe = regexp.MustCompile(`^([A-Z])(\d{9})([A-Z])?$`)

	suspiciousTaxBodies = map[string]bool{
		"123456789": true,
		"987654321": true,
		"012345678": true,
	}

	suspiciousNameWords = []string{"test", "sample", "demo", "fake", "dummy", "example"}

	ordinalSuffixRe = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
)

// KnownAuthorities are the regional issuing authorities accepted without a warning
var KnownAuthorities = []string{
	"Registrar of Companies",
	"Business Registration Service",
	"Kenya Revenue Authority",
	"Registrar of Business Names",
	"County Government",
	"Ministry of Trade",
	"Ministry of Industry",
	"Attorney General",
	"eCitizen",
	"Nairobi City County",
	"Companies Registry",
	"Revenue Authority",
	"URSB",
	"BRELA",
	"Rwanda Development Board",
}

// KnownBusinessTypes are the recognised legal forms
var KnownBusinessTypes = []string{
	"Sole Proprietorship",
	"Sole Proprietor",
	"Partnership",
	"Limited Liability Partnership",
	"Private Limited Company",
	"Public Limited Company",
	"Limited Company",
	"Company Limited by Guarantee",
	"Cooperative Society",
	"Co-operative Society",
	"NGO",
	"Trust",
	"Branch of Foreign Company",
	"Self-Help Group",
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006/01/02",
	"2006.01.02",
	"02/01/06",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// ============================================================================
// Validate
// ============================================================================

type scorecard struct {
	score    int
	errors   []string
	warnings []string
}

func (s *scorecard) add(points int) { s.score += points }

func (s *scorecard) fail(msg string) { s.errors = append(s.errors, msg) }

func (s *scorecard) warn(msg string) { s.warnings = append(s.warnings, msg) }

func (s *scorecard) penalize(points int, msg string) {
	s.score -= points
	s.warn(msg)
}

// Validate scores extracted document data against deterministic rules.
// The result depends only on the input.
func Validate(in ValidationInput) *ValidationResult {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	sc := &scorecard{score: 50}
	var cl Checklist

	checkBusinessName(sc, &cl, in.Data.BusinessName)
	checkRegistration(sc, &cl, in.Data.RegistrationNumber)
	checkTaxNumber(sc, &cl, in.Data.TaxNumber)
	checkDates(sc, &cl, in.Data.IssueDate, in.Data.ExpiryDate, now)
	checkAuthority(sc, &cl, in.Data.IssuingAuthority)
	checkBusinessType(sc, &cl, in.Data.BusinessType)
	checkNameTypeConsistency(sc, &cl, in.Data.BusinessName, in.Data.BusinessType)

	if len(in.SecurityFeatures) > 0 {
		cl.HasSecurityFeatures = true
		sc.add(10)
	}

	if len(in.FraudIndicators) == 0 {
		cl.NoFraudIndicators = true
		sc.add(15)
	} else {
		for _, indicator := range in.FraudIndicators {
			sc.add(-30)
			sc.fail(fmt.Sprintf("Fraud indicator detected: %s", indicator))
		}
	}

	checkOCRConfidence(sc, in.OCRConfidence)

	score := clampScore(sc.score)
	return &ValidationResult{
		IsValid:           len(sc.errors) == 0 && score >= PassingScore,
		AuthenticityScore: score,
		Errors:            nonNil(sc.errors),
		Warnings:          nonNil(sc.warnings),
		Checklist:         cl,
	}
}

func checkBusinessName(sc *scorecard, cl *Checklist, name *string) {
	value := strings.TrimSpace(deref(name))
	if value == "" {
		sc.fail("Business name is missing")
		return
	}

	cl.HasBusinessName = true
	lower := strings.ToLower(value)
	for _, word := range suspiciousNameWords {
		if strings.Contains(lower, word) {
			sc.add(10)
			sc.warn("Business name contains suspicious words")
			return
		}
	}
	sc.add(15)
}

func checkRegistration(sc *scorecard, cl *Checklist, number *string) {
	value := strings.ToUpper(strings.TrimSpace(deref(number)))
	if value == "" {
		sc.warn("Registration number not found")
		return
	}

	cl.HasRegistrationNumber = true
	valid, recognized := MatchRegistrationFormat(value)
	if !valid {
		sc.fail("Invalid registration number format")
		return
	}

	cl.ValidRegistrationFormat = true
	sc.add(10)
	if recognized {
		sc.add(5)
	}
}

// MatchRegistrationFormat reports whether number matches a known regional
// format and whether it matches one of the recognised company sub-patterns.
func MatchRegistrationFormat(number string) (valid, recognized bool) {
	value := strings.ToUpper(strings.TrimSpace(number))
	for _, f := range registrationFormats {
		if f.re.MatchString(value) {
			return true, f.recognized
		}
	}
	return false, false
}

func checkTaxNumber(sc *scorecard, cl *Checklist, number *string) {
	value := normalizeTaxNumber(deref(number))
	if value == "" {
		return
	}

	cl.HasTaxNumber = true
	m := taxNumberRe.FindStringSubmatch(value)
	if m == nil {
		sc.warn("Tax number format not recognised")
		return
	}

	cl.ValidTaxFormat = true
	sc.add(10)
	if m[3] != "" {
		sc.add(5)
	}
	if isSuspiciousTaxBody(m[2]) {
		sc.penalize(10, "Tax number has a suspicious digit pattern")
	}
}

func normalizeTaxNumber(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

func isSuspiciousTaxBody(body string) bool {
	if suspiciousTaxBodies[body] {
		return true
	}
	return strings.Count(body, body[:1]) == len(body)
}

func checkDates(sc *scorecard, cl *Checklist, issue, expiry *string, now time.Time) {
	var issued time.Time
	haveIssue := false

	if raw := strings.TrimSpace(deref(issue)); raw != "" {
		t, ok := ParseDocumentDate(raw)
		switch {
		case !ok:
			sc.warn("Issue date could not be parsed")
		case t.After(now):
			sc.add(-20)
			sc.fail("Issue date is in the future")
		default:
			haveIssue = true
			issued = t
			cl.HasValidIssueDate = true
			sc.add(5)
			if !t.Before(now.AddDate(-5, 0, 0)) {
				sc.add(10)
			}
		}
	}

	raw := strings.TrimSpace(deref(expiry))
	if raw == "" {
		cl.HasValidExpiryDate = true
		return
	}

	t, ok := ParseDocumentDate(raw)
	if !ok {
		sc.fail("Invalid expiry date format")
		return
	}

	anchor := now
	if haveIssue {
		anchor = issued
	}
	if !t.After(anchor) {
		if haveIssue {
			sc.fail("Expiry date must be after the issue date")
		} else {
			sc.fail("Document has expired")
		}
		return
	}

	cl.HasValidExpiryDate = true
	sc.add(5)
	if haveIssue && t.Before(now) {
		sc.warn("Document has expired")
	}
}

// ParseDocumentDate parses the day-first date formats seen on regional documents
func ParseDocumentDate(raw string) (time.Time, bool) {
	s := ordinalSuffixRe.ReplaceAllString(strings.TrimSpace(raw), "$1")
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, ",", " ")), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func checkAuthority(sc *scorecard, cl *Checklist, authority *string) {
	value := strings.TrimSpace(deref(authority))
	if value == "" {
		sc.penalize(5, "Issuing authority not found")
		return
	}
	if !containsAny(value, KnownAuthorities) {
		sc.penalize(5, fmt.Sprintf("Unrecognised issuing authority: %s", value))
		return
	}
	cl.KnownIssuingAuthority = true
	sc.add(10)
}

func checkBusinessType(sc *scorecard, cl *Checklist, businessType *string) {
	value := strings.TrimSpace(deref(businessType))
	if value == "" {
		return
	}
	if !containsAny(value, KnownBusinessTypes) {
		sc.warn(fmt.Sprintf("Unrecognised business type: %s", value))
		return
	}
	cl.ValidBusinessType = true
	sc.add(5)
}

func checkNameTypeConsistency(sc *scorecard, cl *Checklist, name, businessType *string) {
	n := strings.ToLower(strings.TrimSpace(deref(name)))
	bt := strings.ToLower(strings.TrimSpace(deref(businessType)))
	if n == "" || bt == "" {
		return
	}

	consistent := true
	switch {
	case strings.Contains(bt, "limited") || strings.Contains(bt, "ltd"):
		consistent = containsWord(n, "ltd", "limited", "plc", "llp")
	case strings.Contains(bt, "sole"):
		consistent = !containsWord(n, "ltd", "limited")
	}

	if !consistent {
		sc.warn("Business name does not match the declared business type")
		return
	}
	cl.NameTypeConsistent = true
	sc.add(5)
}

func checkOCRConfidence(sc *scorecard, confidence float64) {
	switch {
	case confidence > 80:
		sc.add(20)
	case confidence >= 60:
		sc.add(10)
	case confidence >= 40:
		sc.add(5)
	case confidence >= 20:
		sc.penalize(10, "Low OCR confidence; text may be misread")
	default:
		sc.penalize(20, "Very low OCR confidence; manual review recommended")
	}
}

// ============================================================================
// Helpers
// ============================================================================

func containsAny(value string, list []string) bool {
	lower := strings.ToLower(value)
	for _, entry := range list {
		if strings.Contains(lower, strings.ToLower(entry)) {
			return true
		}
	}
	return false
}

func containsWord(s string, words ...string) bool {
	for _, token := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		for _, w := range words {
			if token == w {
				return true
			}
		}
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
