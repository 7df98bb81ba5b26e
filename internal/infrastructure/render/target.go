package render

import (
	"context"
	"image"
)

// Surface is an offscreen pixel surface owned by one capture
type Surface interface {
	// Width returns the surface width in pixels
	Width() int
	// Height returns the surface height in pixels
	Height() int
	// Release frees the surface; further use is an error
	Release()
	// Released reports whether Release has been called
	Released() bool
}

// Target is a camera-like renderer that can draw into an offscreen surface.
// Calls come from a single goroutine.
type Target interface {
	// IsActive reports whether the target is able to render right now
	IsActive() bool
	// BoundSurface returns the surface currently bound, or nil
	BoundSurface() Surface
	// NewSurface allocates a surface of the given size
	NewSurface(width, height int) (Surface, error)
	// BindOffscreenSurface redirects rendering to s; nil restores the default output
	BindOffscreenSurface(s Surface)
	// Render issues a render into the bound surface
	Render(ctx context.Context) error
	// ReadPixels copies the bound surface into dst, top-left origin first.
	// dst must have the surface's size.
	ReadPixels(ctx context.Context, dst *image.NRGBA) error
}

// RenderError represents an error raised by a render target
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for render target failures
const (
	ErrCodeInvalidSize     = "INVALID_SIZE"
	ErrCodeAllocateFailed  = "ALLOCATE_FAILED"
	ErrCodeNotBound        = "SURFACE_NOT_BOUND"
	ErrCodeSurfaceReleased = "SURFACE_RELEASED"
	ErrCodeRenderTimeout   = "RENDER_TIMEOUT"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeReadbackFailed  = "READBACK_FAILED"
	ErrCodeEncodeFailed    = "ENCODE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
