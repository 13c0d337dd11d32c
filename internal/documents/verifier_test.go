package documents

import (
	"testing"

	"github.com/richxcame/crediscore/internal/ocr"
	"github.com/stretchr/testify/assert"
)

func TestVerify_AuthenticDocument(t *testing.T) {
	analysis := &DocumentAnalysis{
		AuthenticityScore: 82,
		VerificationChecklist: Checklist{
			HasBusinessName:   true,
			NoFraudIndicators: true,
		},
	}

	verdict := Verify(&ocr.OCRResult{Text: "CERTIFICATE OF REGISTRATION", Confidence: 90}, analysis)

	assert.True(t, verdict.IsAuthentic)
	assert.Equal(t, 82, verdict.Confidence)
	assert.Equal(t, []string{"Business name present", "No fraud indicators detected"}, verdict.Reasons)
}

func TestVerify_ThresholdIsSixty(t *testing.T) {
	assert.True(t, Verify(&ocr.OCRResult{Text: "x"}, &DocumentAnalysis{AuthenticityScore: 60}).IsAuthentic)
	assert.False(t, Verify(&ocr.OCRResult{Text: "x"}, &DocumentAnalysis{AuthenticityScore: 59}).IsAuthentic)
}

func TestVerify_NegativeReasons(t *testing.T) {
	analysis := &DocumentAnalysis{
		AuthenticityScore: 20,
		FraudIndicators:   []string{"SPECIMEN"},
		ValidationErrors:  []string{"Fraud indicator detected: SPECIMEN"},
	}

	verdict := Verify(&ocr.OCRResult{Text: "SPECIMEN"}, analysis)

	assert.False(t, verdict.IsAuthentic)
	assert.Equal(t, []string{
		"Fraud indicator found: SPECIMEN",
		"Validation failed: Fraud indicator detected: SPECIMEN",
	}, verdict.Reasons)
}

func TestVerify_OCRFailureNeedsReview(t *testing.T) {
	verdict := Verify(ocr.EmptyResult(), ocrFailureAnalysis())

	assert.False(t, verdict.IsAuthentic)
	assert.Equal(t, 30, verdict.Confidence)
	assert.Contains(t, verdict.Reasons, "No text could be extracted from the document")
}

func TestVerify_NilAnalysis(t *testing.T) {
	verdict := Verify(nil, nil)
	assert.False(t, verdict.IsAuthentic)
	assert.Zero(t, verdict.Confidence)
}
