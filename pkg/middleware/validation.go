package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/crediscore/pkg/validation"
)

// ValidateJSON binds the JSON body into req and validates it
func ValidateJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return err
	}
	return validation.ValidateStruct(req)
}

// RespondWithValidationError writes the standard envelope for a bind or validation failure
func RespondWithValidationError(c *gin.Context, err error) {
	body := gin.H{
		"success": false,
		"error": gin.H{
			"code":    http.StatusBadRequest,
			"message": "Validation failed",
		},
	}

	var valErr *validation.ValidationError
	if errors.As(err, &valErr) {
		body["fields"] = valErr.Errors
	} else {
		body["details"] = err.Error()
	}

	c.JSON(http.StatusBadRequest, body)
}

// ValidateAndBind returns false after writing a 400 when the body is invalid
func ValidateAndBind(c *gin.Context, req interface{}) bool {
	if err := ValidateJSON(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// MaxBodySize limits the request body size
func MaxBodySize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
