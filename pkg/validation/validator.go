package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

var documentTypes = map[string]bool{
	"business_registration": true,
	"tax_certificate":       true,
	"business_license":      true,
	"utility_bill":          true,
	"bank_statement":        true,
	"other":                 true,
}

var riskLevels = map[string]bool{
	"LOW":      true,
	"MEDIUM":   true,
	"HIGH":     true,
	"CRITICAL": true,
}

// Validator returns the shared validator with the custom tags registered
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
			return documentTypes[strings.ToLower(fl.Field().String())]
		})
		_ = validate.RegisterValidation("risk_level", func(fl validator.FieldLevel) bool {
			return riskLevels[fl.Field().String()]
		})
	})
	return validate
}

// ValidateStruct validates s and converts field errors into a *ValidationError
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return NewValidationError(fieldErrs)
	}
	return err
}
