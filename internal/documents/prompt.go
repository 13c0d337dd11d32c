package documents

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/richxcame/crediscore/internal/llm"
)

const systemPrompt = "You are a document verification assistant for business documents. " +
	"Always respond with valid JSON only, without markdown or commentary."

const maxPromptText = 6000

var errMalformedAnalysis = errors.New("malformed analysis response")

var documentTypeAliases = map[string]DocumentType{
	"BUSINESS_REGISTRATION":             TypeBusinessRegistration,
	"BUSINESS_REGISTRATION_CERTIFICATE": TypeBusinessRegistration,
	"CERTIFICATE_OF_REGISTRATION":       TypeBusinessRegistration,
	"BUSINESS_NAME_REGISTRATION":        TypeBusinessRegistration,
	"TAX_CERTIFICATE":                   TypeTaxCertificate,
	"TAX_COMPLIANCE_CERTIFICATE":        TypeTaxCertificate,
	"PIN_CERTIFICATE":                   TypeTaxCertificate,
	"TRADE_LICENSE":                     TypeTradeLicense,
	"TRADE_LICENCE":                     TypeTradeLicense,
	"BUSINESS_LICENSE":                  TypeTradeLicense,
	"BUSINESS_LICENCE":                  TypeTradeLicense,
	"BUSINESS_PERMIT":                   TypeBusinessPermit,
	"SINGLE_BUSINESS_PERMIT":            TypeBusinessPermit,
	"CERTIFICATE_OF_INCORPORATION":      TypeCertificateOfIncorporation,
	"INCORPORATION_CERTIFICATE":         TypeCertificateOfIncorporation,
	"UNKNOWN":                           TypeUnknown,
	"OTHER":                             TypeUnknown,
}

// truncateText cuts text to at most max bytes without splitting a rune
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func buildUserPrompt(text string) string {
	text = truncateText(text, maxPromptText)

	var b strings.Builder
	b.WriteString("Analyse the following text extracted by OCR from a business document.\n\n")
	b.WriteString("1. Classify the document as one of: BUSINESS_REGISTRATION, TAX_CERTIFICATE, TRADE_LICENSE, ")
	b.WriteString("BUSINESS_PERMIT, CERTIFICATE_OF_INCORPORATION, UNKNOWN.\n")
	b.WriteString("2. Extract these fields, using null when a field is absent: businessName, registrationNumber, ")
	b.WriteString("taxNumber, issueDate, expiryDate, issuingAuthority, businessAddress, ownerName, businessType.\n")
	fmt.Fprintf(&b, "3. List every fraud keyword that appears in the text from: %s.\n", quoteAll(FraudKeywords))
	fmt.Fprintf(&b, "4. List the security features the text mentions from: %s.\n", quoteAll(SecurityFeatureNames()))
	b.WriteString("5. Give your confidence in the extraction as a number from 0 to 100.\n\n")
	b.WriteString(`Respond with JSON of the form {"documentType": "...", "extractedData": {"businessName": null, ...}, `)
	b.WriteString(`"confidence": 0, "fraudIndicators": [], "securityFeatures": []}.`)
	b.WriteString("\n\nDocument text:\n\"\"\"\n")
	b.WriteString(text)
	b.WriteString("\n\"\"\"")
	return b.String()
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ", ")
}

type rawAnalysis struct {
	DocumentType     *string                `json:"documentType"`
	ExtractedData    map[string]interface{} `json:"extractedData"`
	Confidence       *float64               `json:"confidence"`
	FraudIndicators  []interface{}          `json:"fraudIndicators"`
	SecurityFeatures []interface{}          `json:"securityFeatures"`
}

type parsedAnalysis struct {
	documentType     DocumentType
	data             ExtractedData
	confidence       *float64
	fraudIndicators  []string
	securityFeatures []string
}

// parseAnalysisResponse treats the completion as untrusted input: it must hold
// a JSON object with a document type and an extractedData object.
func parseAnalysisResponse(content string) (*parsedAnalysis, error) {
	body, err := llm.ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedAnalysis, err)
	}
	if raw.DocumentType == nil || strings.TrimSpace(*raw.DocumentType) == "" {
		return nil, fmt.Errorf("%w: missing documentType", errMalformedAnalysis)
	}
	if raw.ExtractedData == nil {
		return nil, fmt.Errorf("%w: missing extractedData", errMalformedAnalysis)
	}

	parsed := &parsedAnalysis{
		documentType:     normalizeDocumentType(*raw.DocumentType),
		data:             extractedFromMap(raw.ExtractedData),
		fraudIndicators:  stringList(raw.FraudIndicators),
		securityFeatures: stringList(raw.SecurityFeatures),
	}
	if raw.Confidence != nil {
		c := clampFloat(*raw.Confidence, 0, 100)
		parsed.confidence = &c
	}
	return parsed, nil
}

func normalizeDocumentType(s string) DocumentType {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if t, ok := documentTypeAliases[key]; ok {
		return t
	}
	return TypeUnknown
}

func extractedFromMap(m map[string]interface{}) ExtractedData {
	field := func(name string) *string {
		v, ok := m[name]
		if !ok || v == nil {
			return nil
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			return nil
		}
		s = strings.TrimSpace(s)
		switch strings.ToLower(s) {
		case "", "null", "none", "n/a", "unknown", "not found":
			return nil
		}
		return strPtr(s)
	}

	return ExtractedData{
		BusinessName:       field("businessName"),
		RegistrationNumber: field("registrationNumber"),
		TaxNumber:          field("taxNumber"),
		IssueDate:          field("issueDate"),
		ExpiryDate:         field("expiryDate"),
		IssuingAuthority:   field("issuingAuthority"),
		BusinessAddress:    field("businessAddress"),
		OwnerName:          field("ownerName"),
		BusinessType:       field("businessType"),
	}
}

func stringList(items []interface{}) []string {
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
