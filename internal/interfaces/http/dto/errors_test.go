package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidName, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeCaptureInProgress, http.StatusConflict},
		{ErrCodeInvalidConfig, http.StatusBadRequest},
		{ErrCodePixelBudgetExceeded, http.StatusUnprocessableEntity},
		{ErrCodeRenderFailed, http.StatusBadGateway},
		{ErrCodeUnsupported, http.StatusNotImplemented},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_CONFIG", ErrCodeInvalidConfig},
		{"PIXEL_BUDGET_EXCEEDED", ErrCodePixelBudgetExceeded},
		{"IO_ERROR", ErrCodeIO},
		{"UNSUPPORTED", ErrCodeUnsupported},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestEveryMappedCodeHasStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, apiCode)
	}
}

func TestErrorResponses(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Capture not found", "req-1")
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-1", resp.Error.RequestID)

	details := []ValidationDetail{{Field: "dpi", Message: "must be at least 1"}}
	resp = NewValidationErrorResponse("Request validation failed", "req-2", details)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, details, resp.Error.Details)
}

func TestResponseJSON(t *testing.T) {
	data, err := json.Marshal(NewSuccessResponse(map[string]int{"width": 58}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"width":58}}`, string(data))

	data, err = json.Marshal(NewErrorResponse(ErrCodeIO, "disk full"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_IO","message":"disk full"}}`, string(data))
}
