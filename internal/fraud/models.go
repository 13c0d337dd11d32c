package fraud

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrMissingBusinessDetails is returned when a review is checked without the business it is about
var ErrMissingBusinessDetails = errors.New("business details with a name are required")

// ReasonServiceUnavailable is the only reason carried by the safe verdict
const ReasonServiceUnavailable = "service unavailable"

// ReceiptData is what was read off a review's purchase receipt
type ReceiptData struct {
	BusinessName    *string          `json:"businessName,omitempty"`
	BusinessAddress *string          `json:"businessAddress,omitempty"`
	BusinessPhone   *string          `json:"businessPhone,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Date            *string          `json:"date,omitempty"`
	Items           []string         `json:"items,omitempty"`
	ReceiptNumber   *string          `json:"receiptNumber,omitempty"`
	Confidence      float64          `json:"confidence"`
}

// BusinessDetails identifies the reviewed business
type BusinessDetails struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
}

// DetectRequest is the fraud-scoring request body
type DetectRequest struct {
	ReviewText      string          `json:"review_text"`
	ReceiptData     *ReceiptData    `json:"receipt_data"`
	BusinessDetails BusinessDetails `json:"business_details"`
	UserReputation  int             `json:"user_reputation"`
}

// FraudVerdict is the outcome of scoring one review
type FraudVerdict struct {
	IsFraudulent bool     `json:"isFraudulent"`
	Confidence   float64  `json:"confidence"`
	FraudReasons []string `json:"fraudReasons"`
	RiskScore    int      `json:"riskScore"`
}

// HealthStatus is the scoring service's liveness report
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// SafeVerdict is returned whenever the scoring service cannot be used.
// It never marks content as fraudulent.
func SafeVerdict() *FraudVerdict {
	return &FraudVerdict{
		IsFraudulent: false,
		Confidence:   0,
		FraudReasons: []string{ReasonServiceUnavailable},
		RiskScore:    0,
	}
}

// Clamp bounds confidence to 0..1 and risk to 0..100
func (v *FraudVerdict) Clamp() *FraudVerdict {
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	if v.RiskScore < 0 {
		v.RiskScore = 0
	}
	if v.RiskScore > 100 {
		v.RiskScore = 100
	}
	if v.FraudReasons == nil {
		v.FraudReasons = []string{}
	}
	return v
}
