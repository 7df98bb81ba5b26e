package render

import (
	"fmt"
	"image"
)

// MemorySurface is a surface backed by an in-memory NRGBA image
type MemorySurface struct {
	img      *image.NRGBA
	released bool
}

// NewMemorySurface allocates a zeroed width x height surface
func NewMemorySurface(width, height int) (*MemorySurface, error) {
	if width <= 0 || height <= 0 {
		return nil, NewRenderError(ErrCodeInvalidSize,
			fmt.Sprintf("invalid surface size %dx%d", width, height), nil)
	}
	return &MemorySurface{img: image.NewNRGBA(image.Rect(0, 0, width, height))}, nil
}

// Width returns the surface width in pixels
func (s *MemorySurface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface height in pixels
func (s *MemorySurface) Height() int { return s.img.Rect.Dy() }

// Release drops the pixel memory
func (s *MemorySurface) Release() {
	s.released = true
	s.img.Pix = nil
}

// Released reports whether Release has been called
func (s *MemorySurface) Released() bool { return s.released }

// Image returns the backing image, or nil once released
func (s *MemorySurface) Image() *image.NRGBA {
	if s.released {
		return nil
	}
	return s.img
}

// readPixels copies the surface into dst after checking the size
func readPixels(s Surface, img, dst *image.NRGBA) error {
	if s == nil {
		return NewRenderError(ErrCodeNotBound, "no surface is bound", nil)
	}
	if s.Released() || img == nil {
		return NewRenderError(ErrCodeSurfaceReleased, "surface has been released", nil)
	}
	if dst == nil {
		return NewRenderError(ErrCodeReadbackFailed, "no destination buffer", nil)
	}
	width, height := dst.Rect.Dx(), dst.Rect.Dy()
	if s.Width() != width || s.Height() != height {
		return NewRenderError(ErrCodeReadbackFailed,
			fmt.Sprintf("requested %dx%d from a %dx%d surface", width, height, s.Width(), s.Height()), nil)
	}

	for y := 0; y < height; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+width*4], img.Pix[y*img.Stride:y*img.Stride+width*4])
	}
	return nil
}
