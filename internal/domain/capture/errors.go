package capture

import (
	"errors"
	"fmt"

	"github.com/chitosepg/cameracapture/internal/domain/shared"
)

// Error codes for capture failures
const (
	CodeNotActive           = "NOT_ACTIVE"
	CodePixelBudgetExceeded = "PIXEL_BUDGET_EXCEEDED"
	CodeIOError             = "IO_ERROR"
	CodeInvalidConfig       = "INVALID_CONFIG"
	CodeRenderFailed        = "RENDER_FAILED"
	CodeCancelled           = "CANCELLED"
	CodeInvalidState        = "INVALID_STATE"
)

// Sentinel errors, compared by code through errors.Is
var (
	ErrNotActive           = shared.NewDomainError(CodeNotActive, "Capture target is not active")
	ErrPixelBudgetExceeded = shared.NewDomainError(CodePixelBudgetExceeded, "Resolution exceeds maximum pixel count")
	ErrIO                  = shared.NewDomainError(CodeIOError, "Failed to write capture output")
	ErrInvalidConfig       = shared.NewDomainError(CodeInvalidConfig, "Invalid capture configuration")
	ErrRenderFailed        = shared.NewDomainError(CodeRenderFailed, "Render target failed")
	ErrCancelled           = shared.NewDomainError(CodeCancelled, "Capture was cancelled")
)

func invalidConfig(format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidConfig, fmt.Sprintf(format, args...))
}

// PixelBudgetError reports a resolution refused by the pixel budget.
// It matches ErrPixelBudgetExceeded under errors.Is.
type PixelBudgetError struct {
	*shared.DomainError
	Resolution Resolution
	Maximum    int64
}

// Unwrap exposes the underlying domain error to errors.As
func (e *PixelBudgetError) Unwrap() error {
	return e.DomainError
}

func pixelBudgetExceeded(res Resolution, maximum int64) *PixelBudgetError {
	return &PixelBudgetError{
		DomainError: shared.NewDomainError(CodePixelBudgetExceeded,
			fmt.Sprintf("Resolution %s (%d pixels) exceeds maximum pixel count %d", res, res.Area(), maximum)),
		Resolution: res,
		Maximum:    maximum,
	}
}

// ErrorCode extracts the domain error code from err, or "" if err carries none
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
