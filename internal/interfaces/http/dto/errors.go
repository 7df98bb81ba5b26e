package dto

import "net/http"

// Error codes returned in ErrorInfo.Code. Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is used when request fields fail validation
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the body is not valid JSON
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeInvalidName is used for file names with path elements
	ErrCodeInvalidName = "ERR_INVALID_NAME"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
	ErrCodeConflict = "ERR_CONFLICT"
)

// Capture error codes
const (
	// ErrCodeCaptureInProgress is used when a capture request hits the busy guard
	ErrCodeCaptureInProgress = "ERR_CAPTURE_IN_PROGRESS"
	// ErrCodeInvalidConfig is used when capture settings are rejected
	ErrCodeInvalidConfig = "ERR_INVALID_CONFIG"
	// ErrCodePixelBudgetExceeded is used when a resolution is over the budget
	ErrCodePixelBudgetExceeded = "ERR_PIXEL_BUDGET_EXCEEDED"
	// ErrCodeNotActive is used when the render target cannot render
	ErrCodeNotActive = "ERR_NOT_ACTIVE"
	// ErrCodeRenderFailed is used when the render target fails
	ErrCodeRenderFailed = "ERR_RENDER_FAILED"
	// ErrCodeIO is used when output cannot be written or read
	ErrCodeIO = "ERR_IO"
	// ErrCodeCancelled is used when a capture was aborted
	ErrCodeCancelled = "ERR_CANCELLED"
	// ErrCodeUnsupported is used when the configured target lacks a feature
	ErrCodeUnsupported = "ERR_UNSUPPORTED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeInvalidName: http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	ErrCodeCaptureInProgress:   http.StatusConflict,
	ErrCodeInvalidConfig:       http.StatusBadRequest,
	ErrCodePixelBudgetExceeded: http.StatusUnprocessableEntity,
	ErrCodeNotActive:           http.StatusConflict,
	ErrCodeRenderFailed:        http.StatusBadGateway,
	ErrCodeIO:                  http.StatusInternalServerError,
	ErrCodeCancelled:           http.StatusConflict,
	ErrCodeUnsupported:         http.StatusNotImplemented,
}

// GetHTTPStatus returns the HTTP status code for an error code, or 500
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"INVALID_INPUT":         ErrCodeValidation,
	"INVALID_STATE":         ErrCodeConflict,
	"INVALID_NAME":          ErrCodeInvalidName,
	"INVALID_CONFIG":        ErrCodeInvalidConfig,
	"PIXEL_BUDGET_EXCEEDED": ErrCodePixelBudgetExceeded,
	"NOT_ACTIVE":            ErrCodeNotActive,
	"RENDER_FAILED":         ErrCodeRenderFailed,
	"IO_ERROR":              ErrCodeIO,
	"CANCELLED":             ErrCodeCancelled,
	"UNSUPPORTED":           ErrCodeUnsupported,
}

// NormalizeErrorCode converts a domain error code to its API form.
// Codes already in API form or unknown codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
