package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func completeData() ExtractedData {
	return ExtractedData{
		BusinessName:       strPtr("Acme Traders Ltd"),
		RegistrationNumber: strPtr("C.123456"),
		TaxNumber:          strPtr("P051234567Q"),
		IssueDate:          strPtr("15/03/2023"),
		ExpiryDate:         strPtr("15/03/2026"),
		IssuingAuthority:   strPtr("Registrar of Companies"),
		BusinessAddress:    strPtr("Moi Avenue, Nairobi"),
		OwnerName:          strPtr("Jane Wanjiku"),
		BusinessType:       strPtr("Private Limited Company"),
	}
}

func TestValidate_CompleteDocument(t *testing.T) {
	result := Validate(ValidationInput{
		Data:             completeData(),
		SecurityFeatures: []string{"seal"},
		OCRConfidence:    90,
		Now:              testNow,
	})

	assert.True(t, result.IsValid)
	assert.Equal(t, 100, result.AuthenticityScore)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, Checklist{
		HasBusinessName:         true,
		HasRegistrationNumber:   true,
		ValidRegistrationFormat: true,
		HasTaxNumber:            true,
		ValidTaxFormat:          true,
		HasValidIssueDate:       true,
		HasValidExpiryDate:      true,
		KnownIssuingAuthority:   true,
		ValidBusinessType:       true,
		NameTypeConsistent:      true,
		HasSecurityFeatures:     true,
		NoFraudIndicators:       true,
	}, result.Checklist)
}

func TestValidate_MinimalDocumentScore(t *testing.T) {
	// 50 base +15 name -5 no authority +15 no fraud +10 ocr tier
	result := Validate(ValidationInput{
		Data:          ExtractedData{BusinessName: strPtr("Acme Traders")},
		OCRConfidence: 70,
		Now:           testNow,
	})

	assert.Equal(t, 85, result.AuthenticityScore)
	assert.True(t, result.IsValid)
	assert.Contains(t, result.Warnings, "Issuing authority not found")
	assert.Contains(t, result.Warnings, "Registration number not found")
	assert.True(t, result.Checklist.HasValidExpiryDate)
}

func TestValidate_FraudIndicatorInvalidatesDocument(t *testing.T) {
	clean := Validate(ValidationInput{
		Data:          ExtractedData{BusinessName: strPtr("Acme Traders")},
		OCRConfidence: 70,
		Now:           testNow,
	})
	flagged := Validate(ValidationInput{
		Data:            ExtractedData{BusinessName: strPtr("Acme Traders")},
		FraudIndicators: []string{"SAMPLE"},
		OCRConfidence:   70,
		Now:             testNow,
	})

	assert.False(t, flagged.IsValid)
	assert.LessOrEqual(t, flagged.AuthenticityScore, clean.AuthenticityScore-30)
	assert.Contains(t, flagged.Errors, "Fraud indicator detected: SAMPLE")
	assert.False(t, flagged.Checklist.NoFraudIndicators)
}

func TestValidate_ScoreClampedToZero(t *testing.T) {
	result := Validate(ValidationInput{
		FraudIndicators: []string{"FAKE", "SAMPLE", "SPECIMEN", "DRAFT"},
		OCRConfidence:   5,
		Now:             testNow,
	})

	assert.Equal(t, 0, result.AuthenticityScore)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Business name is missing")
}

func TestValidate_ScoreAlwaysInRange(t *testing.T) {
	inputs := []ValidationInput{
		{Now: testNow},
		{Data: completeData(), SecurityFeatures: []string{"seal", "stamp"}, OCRConfidence: 100, Now: testNow},
		{Data: completeData(), FraudIndicators: []string{"TEST"}, OCRConfidence: 0, Now: testNow},
		{Data: ExtractedData{RegistrationNumber: strPtr("???")}, OCRConfidence: 30, Now: testNow},
	}

	for _, in := range inputs {
		result := Validate(in)
		assert.GreaterOrEqual(t, result.AuthenticityScore, 0)
		assert.LessOrEqual(t, result.AuthenticityScore, 100)
		if result.IsValid {
			assert.GreaterOrEqual(t, result.AuthenticityScore, PassingScore)
			assert.Empty(t, result.Errors)
		}
	}
}

func TestValidate_Deterministic(t *testing.T) {
	in := ValidationInput{Data: completeData(), OCRConfidence: 65, Now: testNow}
	assert.Equal(t, Validate(in), Validate(in))
}

func TestValidate_BusinessNameSuspicious(t *testing.T) {
	result := Validate(ValidationInput{
		Data:          ExtractedData{BusinessName: strPtr("Demo Holdings")},
		OCRConfidence: 70,
		Now:           testNow,
	})

	assert.Equal(t, 80, result.AuthenticityScore)
	assert.Contains(t, result.Warnings, "Business name contains suspicious words")
	assert.True(t, result.Checklist.HasBusinessName)
}

func TestMatchRegistrationFormat(t *testing.T) {
	tests := []struct {
		number     string
		valid      bool
		recognized bool
	}{
		{"C.123456", true, true},
		{"C. 1234567", true, true},
		{"c123456", true, true},
		{"PVT-AB12CD3", true, true},
		{"CPR/2019/12345", true, false},
		{"BN-ABC12345", true, false},
		{"KE/1234567", true, false},
		{"ABC-XYZ", false, false},
		{"12", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			valid, recognized := MatchRegistrationFormat(tt.number)
			assert.Equal(t, tt.valid, valid)
			assert.Equal(t, tt.recognized, recognized)
		})
	}
}

func TestValidate_InvalidRegistrationIsHardError(t *testing.T) {
	result := Validate(ValidationInput{
		Data:          ExtractedData{BusinessName: strPtr("Acme Traders"), RegistrationNumber: strPtr("ABC-XYZ")},
		OCRConfidence: 90,
		Now:           testNow,
	})

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Invalid registration number format")
	assert.True(t, result.Checklist.HasRegistrationNumber)
	assert.False(t, result.Checklist.ValidRegistrationFormat)
}

func TestValidate_TaxNumber(t *testing.T) {
	base := func(tax string) *ValidationResult {
		return Validate(ValidationInput{
			Data:          ExtractedData{BusinessName: strPtr("Acme Traders"), TaxNumber: strPtr(tax)},
			OCRConfidence: 70,
			Now:           testNow,
		})
	}

	t.Run("with check letter", func(t *testing.T) {
		result := base("P051234567Q")
		assert.Equal(t, 100, result.AuthenticityScore)
		assert.True(t, result.Checklist.ValidTaxFormat)
	})

	t.Run("without check letter", func(t *testing.T) {
		assert.Equal(t, 95, base("P051234567").AuthenticityScore)
	})

	t.Run("repeating digits", func(t *testing.T) {
		result := base("A111111111B")
		assert.Equal(t, 90, result.AuthenticityScore)
		assert.Contains(t, result.Warnings, "Tax number has a suspicious digit pattern")
	})

	t.Run("sequential digits", func(t *testing.T) {
		result := base("A123456789")
		assert.Equal(t, 85, result.AuthenticityScore)
	})

	t.Run("unrecognised shape", func(t *testing.T) {
		result := base("12345")
		assert.Equal(t, 85, result.AuthenticityScore)
		assert.True(t, result.Checklist.HasTaxNumber)
		assert.False(t, result.Checklist.ValidTaxFormat)
		assert.Contains(t, result.Warnings, "Tax number format not recognised")
		assert.Empty(t, result.Errors)
	})
}

func TestValidate_Dates(t *testing.T) {
	run := func(issue, expiry *string) *ValidationResult {
		return Validate(ValidationInput{
			Data:          ExtractedData{BusinessName: strPtr("Acme Traders"), IssueDate: issue, ExpiryDate: expiry},
			OCRConfidence: 70,
			Now:           testNow,
		})
	}

	t.Run("future issue date", func(t *testing.T) {
		result := run(strPtr("01/01/2030"), nil)
		assert.Contains(t, result.Errors, "Issue date is in the future")
		assert.Equal(t, 65, result.AuthenticityScore)
		assert.False(t, result.IsValid)
	})

	t.Run("old issue date earns base bonus only", func(t *testing.T) {
		result := run(strPtr("2010-01-01"), nil)
		assert.Equal(t, 90, result.AuthenticityScore)
		assert.True(t, result.Checklist.HasValidIssueDate)
	})

	t.Run("expiry before issue", func(t *testing.T) {
		result := run(strPtr("15/03/2023"), strPtr("01/01/2023"))
		assert.Contains(t, result.Errors, "Expiry date must be after the issue date")
		assert.False(t, result.Checklist.HasValidExpiryDate)
	})

	t.Run("expiry already passed without issue date", func(t *testing.T) {
		result := run(nil, strPtr("01/01/2024"))
		assert.Contains(t, result.Errors, "Document has expired")
	})

	t.Run("expired after a valid issue date", func(t *testing.T) {
		result := run(strPtr("01/01/2021"), strPtr("01/01/2024"))
		assert.Empty(t, result.Errors)
		assert.Contains(t, result.Warnings, "Document has expired")
		assert.True(t, result.Checklist.HasValidExpiryDate)
	})

	t.Run("unparseable expiry", func(t *testing.T) {
		result := run(nil, strPtr("next year"))
		assert.Contains(t, result.Errors, "Invalid expiry date format")
	})
}

func TestParseDocumentDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2023-03-15", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15/03/2023", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"5/3/2023", time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"15.03.2023", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15th March 2023", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"March 15, 2023", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"1st Jan 2020", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDocumentDate(tt.raw)
			require.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestValidate_AuthorityAndBusinessType(t *testing.T) {
	result := Validate(ValidationInput{
		Data: ExtractedData{
			BusinessName:     strPtr("Acme Traders"),
			IssuingAuthority: strPtr("Ministry of Magic"),
			BusinessType:     strPtr("Guild"),
		},
		OCRConfidence: 70,
		Now:           testNow,
	})

	assert.Contains(t, result.Warnings, "Unrecognised issuing authority: Ministry of Magic")
	assert.Contains(t, result.Warnings, "Unrecognised business type: Guild")
	assert.False(t, result.Checklist.KnownIssuingAuthority)
	assert.False(t, result.Checklist.ValidBusinessType)

	known := Validate(ValidationInput{
		Data: ExtractedData{
			BusinessName:     strPtr("Acme Traders"),
			IssuingAuthority: strPtr("KENYA REVENUE AUTHORITY"),
		},
		OCRConfidence: 70,
		Now:           testNow,
	})
	assert.True(t, known.Checklist.KnownIssuingAuthority)
}

func TestValidate_NameTypeConsistency(t *testing.T) {
	tests := []struct {
		name       string
		bizName    string
		bizType    string
		consistent bool
	}{
		{"limited with ltd", "Acme Ltd", "Private Limited Company", true},
		{"limited without suffix", "Acme Traders", "Private Limited Company", false},
		{"sole proprietor plain name", "Mama Mboga Stores", "Sole Proprietorship", true},
		{"sole proprietor with ltd", "Mama Mboga Ltd", "Sole Proprietorship", false},
		{"partnership", "Kamau and Sons", "Partnership", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(ValidationInput{
				Data:          ExtractedData{BusinessName: strPtr(tt.bizName), BusinessType: strPtr(tt.bizType)},
				OCRConfidence: 70,
				Now:           testNow,
			})
			assert.Equal(t, tt.consistent, result.Checklist.NameTypeConsistent)
			if !tt.consistent {
				assert.Contains(t, result.Warnings, "Business name does not match the declared business type")
			}
		})
	}
}

func TestCheckOCRConfidence(t *testing.T) {
	tests := []struct {
		confidence float64
		delta      int
		warns      bool
	}{
		{95, 20, false},
		{80.5, 20, false},
		{80, 10, false},
		{60, 10, false},
		{59.9, 5, false},
		{40, 5, false},
		{39, -10, true},
		{20, -10, true},
		{19, -20, true},
		{0, -20, true},
	}

	for _, tt := range tests {
		sc := &scorecard{}
		checkOCRConfidence(sc, tt.confidence)
		assert.Equal(t, tt.delta, sc.score, "confidence %v", tt.confidence)
		assert.Equal(t, tt.warns, len(sc.warnings) > 0, "confidence %v", tt.confidence)
	}
}
