package documents

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/crediscore/internal/ocr"
)

// DocumentType classifies an uploaded business document
type DocumentType string

const (
	TypeBusinessRegistration       DocumentType = "BUSINESS_REGISTRATION"
	TypeTaxCertificate             DocumentType = "TAX_CERTIFICATE"
	TypeTradeLicense               DocumentType = "TRADE_LICENSE"
	TypeBusinessPermit             DocumentType = "BUSINESS_PERMIT"
	TypeCertificateOfIncorporation DocumentType = "CERTIFICATE_OF_INCORPORATION"
	TypeUnknown                    DocumentType = "UNKNOWN"
)

// Analysis sources
const (
	SourceAI         = "ai"
	SourceLocal      = "local"
	SourceOCRFailure = "ocr_failure"
)

// PassingScore is the minimum authenticity score of a valid, authentic document
const PassingScore = 60

// ExtractedData holds the named fields read off a document. Absent fields are nil.
type ExtractedData struct {
	BusinessName       *string `json:"businessName"`
	RegistrationNumber *string `json:"registrationNumber"`
	TaxNumber          *string `json:"taxNumber"`
	IssueDate          *string `json:"issueDate"`
	ExpiryDate         *string `json:"expiryDate"`
	IssuingAuthority   *string `json:"issuingAuthority"`
	BusinessAddress    *string `json:"businessAddress"`
	OwnerName          *string `json:"ownerName"`
	BusinessType       *string `json:"businessType"`
}

// Checklist is the 12-point verification checklist
type Checklist struct {
	HasBusinessName         bool `json:"hasBusinessName"`
	HasRegistrationNumber   bool `json:"hasRegistrationNumber"`
	ValidRegistrationFormat bool `json:"validRegistrationFormat"`
	HasTaxNumber            bool `json:"hasTaxNumber"`
	ValidTaxFormat          bool `json:"validTaxFormat"`
	HasValidIssueDate       bool `json:"hasValidIssueDate"`
	HasValidExpiryDate      bool `json:"hasValidExpiryDate"`
	KnownIssuingAuthority   bool `json:"knownIssuingAuthority"`
	ValidBusinessType       bool `json:"validBusinessType"`
	NameTypeConsistent      bool `json:"nameTypeConsistent"`
	HasSecurityFeatures     bool `json:"hasSecurityFeatures"`
	NoFraudIndicators       bool `json:"noFraudIndicators"`
}

// DocumentAnalysis is the typed outcome of analysing one document's text
type DocumentAnalysis struct {
	DocumentType          DocumentType  `json:"documentType"`
	ExtractedData         ExtractedData `json:"extractedData"`
	Confidence            float64       `json:"confidence"`
	IsValid               bool          `json:"isValid"`
	ValidationErrors      []string      `json:"validationErrors"`
	Warnings              []string      `json:"warnings"`
	AuthenticityScore     int           `json:"authenticityScore"`
	FraudIndicators       []string      `json:"fraudIndicators"`
	SecurityFeatures      []string      `json:"securityFeatures"`
	VerificationChecklist Checklist     `json:"verificationChecklist"`
	Source                string        `json:"source"`
}

// ValidationInput is everything the rule-based validator looks at
type ValidationInput struct {
	Data             ExtractedData
	FraudIndicators  []string
	SecurityFeatures []string
	OCRConfidence    float64
	// Now anchors date checks; zero means time.Now()
	Now time.Time
}

// ValidationResult is the validator's deterministic verdict
type ValidationResult struct {
	IsValid           bool      `json:"isValid"`
	AuthenticityScore int       `json:"authenticityScore"`
	Errors            []string  `json:"errors"`
	Warnings          []string  `json:"warnings"`
	Checklist         Checklist `json:"checklist"`
}

// AuthenticityVerdict restates an analysis as an authentic/not-authentic decision
type AuthenticityVerdict struct {
	IsAuthentic bool     `json:"isAuthentic"`
	Confidence  int      `json:"confidence"`
	Reasons     []string `json:"reasons"`
}

// BusinessDocument is the persisted document record
type BusinessDocument struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	BusinessID        uuid.UUID  `json:"business_id" db:"business_id"`
	DocumentType      string     `json:"document_type" db:"document_type"`
	FileURL           string     `json:"file_url" db:"file_url"`
	StorageKey        *string    `json:"-" db:"storage_key"`
	FileType          *string    `json:"file_type,omitempty" db:"file_type"`
	OCRText           *string    `json:"ocr_text,omitempty" db:"ocr_text"`
	OCRConfidence     *float64   `json:"ocr_confidence,omitempty" db:"ocr_confidence"`
	AuthenticityScore *int       `json:"authenticity_score,omitempty" db:"authenticity_score"`
	IsAuthentic       *bool      `json:"is_authentic,omitempty" db:"is_authentic"`
	IsVerified        bool       `json:"is_verified" db:"is_verified"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// VerificationRecord holds the fields written back after a pipeline run
type VerificationRecord struct {
	DocumentID        uuid.UUID
	OCRText           string
	OCRConfidence     float64
	Analysis          *DocumentAnalysis
	AuthenticityScore int
	IsAuthentic       bool
	// IsVerified requires an authentic verdict and a clean validation
	IsVerified bool
	VerifiedAt time.Time
}

// VerificationResult is returned by the pipeline
type VerificationResult struct {
	Document *BusinessDocument    `json:"document"`
	OCR      *ocr.OCRResult       `json:"ocr"`
	Analysis *DocumentAnalysis    `json:"analysis"`
	Verdict  *AuthenticityVerdict `json:"verdict"`
}

// AnalyzeTextRequest analyses text that was extracted elsewhere
type AnalyzeTextRequest struct {
	Text       string  `json:"text" binding:"required"`
	Confidence float64 `json:"confidence" binding:"gte=0,lte=100"`
}

// AnalyzeTextResponse pairs an analysis with its verdict
type AnalyzeTextResponse struct {
	Analysis *DocumentAnalysis    `json:"analysis"`
	Verdict  *AuthenticityVerdict `json:"verdict"`
}

func strPtr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
