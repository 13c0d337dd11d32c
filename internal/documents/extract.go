package documents

import (
	"regexp"
	"strings"
)

const datePattern = `(\d{4}[./-]\d{1,2}[./-]\d{1,2}|\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]{3,9},?\s+\d{4}|[A-Za-z]{3,9}\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})`

var (
	businessNameRes = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*(?:business|company|trading|registered)\s+name\s*[:\-]\s*(.+?)\s*$`),
		regexp.MustCompile(`(?im)^\s*name\s+of\s+(?:business|company)\s*[:\-]\s*(.+?)\s*$`),
		regexp.MustCompile(`(?i)certify\s+that\s+(.+?)\s+(?:has\s+been|is|was)\s+(?:duly\s+)?(?:registered|incorporated)`),
	}
	registrationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:registration|reg\.?|incorporation|company)\s*(?:no\.?|number|#)\s*[:\-]?\s*([A-Z]{1,4}[./\-]?\s?[A-Z0-9/\-]{4,}|\d{5,})`),
		regexp.MustCompile(`\b(C\.\s?\d{6,8}|PVT-[A-Z0-9]{6,8}|CPR/\d{4}/\d{3,8}|BN[-/]?[A-Z0-9]{6,8})\b`),
	}
	taxNumberRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:\bPIN|\bTIN|tax\s+(?:identification\s+)?(?:no\.?|number|id))\s*[:\-]?\s*([A-Z]\s?\d{9}\s?[A-Z]?)\b`),
		regexp.MustCompile(`\b([A-Z]\d{9}[A-Z])\b`),
	}
	issueDateRe  = regexp.MustCompile(`(?i)(?:date\s+of\s+issue|issue\s+date|issued\s+on|date\s+issued|dated)\s*[:\-]?\s*` + datePattern)
	expiryDateRe = regexp.MustCompile(`(?i)(?:expiry\s+date|date\s+of\s+expiry|expires(?:\s+on)?|valid\s+(?:until|till|to))\s*[:\-]?\s*` + datePattern)
	authorityRe  = regexp.MustCompile(`(?im)(?:issued\s+by|issuing\s+authority)\s*[:\-]?\s*(.+?)\s*$`)
	addressRe    = regexp.MustCompile(`(?im)^\s*(?:business\s+|physical\s+|registered\s+|postal\s+)?address\s*[:\-]\s*(.+?)\s*$`)
	ownerRe      = regexp.MustCompile(`(?im)^\s*(?:owner|proprietor|director)(?:'s)?(?:\s+name)?\s*[:\-]\s*(.+?)\s*$`)
	typeRe       = regexp.MustCompile(`(?im)^\s*(?:business\s+type|type\s+of\s+business|nature\s+of\s+business|legal\s+form)\s*[:\-]\s*(.+?)\s*$`)
)

// classification rules are checked in order; the first hit wins
var documentTypeRules = []struct {
	docType  DocumentType
	keywords []string
}{
	{TypeCertificateOfIncorporation, []string{"certificate of incorporation", "incorporated under", "hereby incorporated"}},
	{TypeTaxCertificate, []string{"tax compliance", "tax certificate", "pin certificate", "tax registration"}},
	{TypeTradeLicense, []string{"trade licence", "trade license", "trading licence", "trading license"}},
	{TypeBusinessPermit, []string{"business permit", "single business permit", "unified business permit"}},
	{TypeBusinessRegistration, []string{"certificate of registration", "business registration", "registration of business names", "business name"}},
}

// ClassifyDocument guesses the document type from its text
func ClassifyDocument(text string) DocumentType {
	lower := strings.ToLower(text)
	for _, rule := range documentTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.docType
			}
		}
	}
	return TypeUnknown
}

// ExtractFields pulls the nine named fields out of raw text with regular expressions
func ExtractFields(text string) ExtractedData {
	var data ExtractedData

	data.BusinessName = firstSubmatch(text, businessNameRes...)
	data.RegistrationNumber = firstSubmatch(text, registrationRes...)
	if tax := firstSubmatch(text, taxNumberRes...); tax != nil {
		data.TaxNumber = strPtr(strings.ReplaceAll(*tax, " ", ""))
	}
	data.IssueDate = firstSubmatch(text, issueDateRe)
	data.ExpiryDate = firstSubmatch(text, expiryDateRe)
	data.IssuingAuthority = firstSubmatch(text, authorityRe)
	if data.IssuingAuthority == nil {
		data.IssuingAuthority = findListed(text, KnownAuthorities)
	}
	data.BusinessAddress = firstSubmatch(text, addressRe)
	data.OwnerName = firstSubmatch(text, ownerRe)
	data.BusinessType = firstSubmatch(text, typeRe)
	if data.BusinessType == nil {
		data.BusinessType = findListed(text, KnownBusinessTypes)
	}

	return data
}

func firstSubmatch(text string, res ...*regexp.Regexp) *string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			if v := strings.TrimSpace(m[1]); v != "" {
				return strPtr(v)
			}
		}
	}
	return nil
}

// findListed returns the longest entry of list that occurs in text
func findListed(text string, list []string) *string {
	lower := strings.ToLower(text)
	best := ""
	for _, entry := range list {
		if len(entry) > len(best) && strings.Contains(lower, strings.ToLower(entry)) {
			best = entry
		}
	}
	if best == "" {
		return nil
	}
	return strPtr(best)
}
