package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessResponse(c, gin.H{"score": 72})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.True(t, body["success"].(bool))
	assert.Equal(t, float64(72), body["data"].(map[string]interface{})["score"])
}

func TestSuccessResponseWithMeta(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessResponseWithMeta(c, []string{"a"}, &Meta{Limit: 20, Offset: 0, Total: 1})

	body := decode(t, w)
	assert.Equal(t, float64(1), body["meta"].(map[string]interface{})["total"])
}

func TestAppErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	AppErrorResponse(c, NewNotFoundError("business not found", errors.New("no rows")))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.False(t, body["success"].(bool))
	assert.Equal(t, "business not found", body["error"].(map[string]interface{})["message"])
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewInternalError("failed", cause)

	assert.Equal(t, "failed: boom", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "conflict", NewConflictError("conflict").Error())
	assert.Equal(t, http.StatusServiceUnavailable, NewServiceUnavailableError("down").Code)
}
