package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"
	"go.uber.org/zap"
)

// ImageTargetConfig contains configuration for the software target
type ImageTargetConfig struct {
	// Scene is drawn scaled into the bound surface on every render.
	// A nil scene renders Background only.
	Scene image.Image
	// Background fills the surface before the scene is drawn (default: transparent)
	Background color.Color
	// Scaler selects the interpolation (default: CatmullRom)
	Scaler xdraw.Scaler
	// Logger for debug output
	Logger *zap.Logger
}

// ImageTarget renders a still scene image, scaled to whatever surface is
// bound. It stands in for a camera when no GPU or browser is available.
type ImageTarget struct {
	config *ImageTargetConfig
	logger *zap.Logger
	active atomic.Bool
	bound  *MemorySurface

	allocations atomic.Int64
	renders     atomic.Int64
}

// NewImageTarget creates an active software target
func NewImageTarget(config *ImageTargetConfig) *ImageTarget {
	if config == nil {
		config = &ImageTargetConfig{}
	}
	if config.Background == nil {
		config.Background = color.Transparent
	}
	if config.Scaler == nil {
		config.Scaler = xdraw.CatmullRom
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &ImageTarget{config: config, logger: logger}
	t.active.Store(true)
	return t
}

// SetActive toggles whether the target can render. Safe for concurrent use.
func (t *ImageTarget) SetActive(active bool) {
	t.active.Store(active)
}

// IsActive reports whether the target can render
func (t *ImageTarget) IsActive() bool {
	return t.active.Load()
}

// BoundSurface returns the bound surface, or nil
func (t *ImageTarget) BoundSurface() Surface {
	if t.bound == nil {
		return nil
	}
	return t.bound
}

// NewSurface allocates an in-memory surface
func (t *ImageTarget) NewSurface(width, height int) (Surface, error) {
	s, err := NewMemorySurface(width, height)
	if err != nil {
		return nil, err
	}
	t.allocations.Add(1)
	t.logger.Debug("surface allocated", zap.Int("width", width), zap.Int("height", height))
	return s, nil
}

// BindOffscreenSurface binds s. Surfaces from other targets are ignored.
func (t *ImageTarget) BindOffscreenSurface(s Surface) {
	if s == nil {
		t.bound = nil
		return
	}
	ms, ok := s.(*MemorySurface)
	if !ok {
		t.logger.Warn("ignoring foreign surface", zap.String("type", fmt.Sprintf("%T", s)))
		return
	}
	t.bound = ms
}

// Render draws the scene into the bound surface
func (t *ImageTarget) Render(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeRenderTimeout, "render was cancelled", err)
	}
	if !t.IsActive() {
		return NewRenderError(ErrCodeRenderFailed, "target is not active", nil)
	}
	if t.bound == nil {
		return NewRenderError(ErrCodeNotBound, "no surface is bound", nil)
	}
	dst := t.bound.Image()
	if dst == nil {
		return NewRenderError(ErrCodeSurfaceReleased, "surface has been released", nil)
	}

	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(t.config.Background), image.Point{}, xdraw.Src)
	if t.config.Scene != nil {
		t.config.Scaler.Scale(dst, dst.Bounds(), t.config.Scene, t.config.Scene.Bounds(), xdraw.Over, nil)
	}
	t.renders.Add(1)
	return nil
}

// ReadPixels copies the bound surface
func (t *ImageTarget) ReadPixels(ctx context.Context, dst *image.NRGBA) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeReadbackFailed, "readback was cancelled", err)
	}
	if t.bound == nil {
		return NewRenderError(ErrCodeNotBound, "no surface is bound", nil)
	}
	return readPixels(t.bound, t.bound.Image(), dst)
}

// Allocations returns how many surfaces the target has allocated
func (t *ImageTarget) Allocations() int64 {
	return t.allocations.Load()
}

// Renders returns how many renders completed
func (t *ImageTarget) Renders() int64 {
	return t.renders.Load()
}

// Ensure ImageTarget implements Target
var _ Target = (*ImageTarget)(nil)
