package documents

import (
	"fmt"

	"github.com/richxcame/crediscore/internal/ocr"
)

// Verify restates an analysis as an authenticity verdict. It performs no I/O.
func Verify(result *ocr.OCRResult, analysis *DocumentAnalysis) *AuthenticityVerdict {
	if analysis == nil {
		return &AuthenticityVerdict{Reasons: []string{"Document was not analysed"}}
	}

	score := clampScore(analysis.AuthenticityScore)
	verdict := &AuthenticityVerdict{
		IsAuthentic: score >= PassingScore,
		Confidence:  score,
		Reasons:     checklistReasons(analysis.VerificationChecklist),
	}

	if result.IsBlank() {
		verdict.Reasons = append(verdict.Reasons, "No text could be extracted from the document")
	}
	for _, indicator := range analysis.FraudIndicators {
		verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("Fraud indicator found: %s", indicator))
	}
	for _, e := range analysis.ValidationErrors {
		verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("Validation failed: %s", e))
	}

	return verdict
}

func checklistReasons(cl Checklist) []string {
	entries := []struct {
		ok     bool
		reason string
	}{
		{cl.HasBusinessName, "Business name present"},
		{cl.HasRegistrationNumber, "Registration number present"},
		{cl.ValidRegistrationFormat, "Registration number format is valid"},
		{cl.HasTaxNumber, "Tax number present"},
		{cl.ValidTaxFormat, "Tax number format is valid"},
		{cl.HasValidIssueDate, "Issue date is valid"},
		{cl.HasValidExpiryDate, "Expiry date is valid"},
		{cl.KnownIssuingAuthority, "Issued by a known authority"},
		{cl.ValidBusinessType, "Business type is recognised"},
		{cl.NameTypeConsistent, "Business name is consistent with its type"},
		{cl.HasSecurityFeatures, "Security features detected"},
		{cl.NoFraudIndicators, "No fraud indicators detected"},
	}

	reasons := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.ok {
			reasons = append(reasons, e.reason)
		}
	}
	return reasons
}
