package capture

import (
	"fmt"
)

// Bounds accepted for externally editable settings
const (
	MinDPI           = 1.0
	MaxDPI           = 2000.0
	MinDPIToPPIRatio = 1.0
	MaxDPIToPPIRatio = 16.0
	MinPaperMM       = 1.0
	MaxPaperMM       = 2000.0
)

// CaptureConfig holds the parameters that determine the capture resolution.
// The caller owns it; a capture takes a copy when it is requested.
type CaptureConfig struct {
	PaperSize     PaperSize `json:"paper_size"`
	PaperWidthMM  float64   `json:"paper_width_mm"`  // used only for CUSTOM
	PaperHeightMM float64   `json:"paper_height_mm"` // used only for CUSTOM
	Swap          bool      `json:"swap"`
	DPI           float64   `json:"dpi"`
	DPIToPPIRatio float64   `json:"dpi_to_ppi_ratio"`
	MaximumPixels int64     `json:"maximum_pixels"`
}

// DefaultCaptureConfig returns the settings the legacy tool started with
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		PaperSize:     PaperSizeA4,
		PaperWidthMM:  210,
		PaperHeightMM: 297,
		DPI:           350,
		DPIToPPIRatio: 1,
		MaximumPixels: 18_000_000,
	}
}

// Validate checks the configuration against the editable ranges.
// It is stricter than Resolve, which only rejects values it cannot compute with.
func (c CaptureConfig) Validate() error {
	if err := c.validateComputable(); err != nil {
		return err
	}
	if c.DPI < MinDPI || c.DPI > MaxDPI {
		return invalidConfig("DPI must be between %.0f and %.0f", MinDPI, MaxDPI)
	}
	if c.DPIToPPIRatio > MaxDPIToPPIRatio {
		return invalidConfig("DPI/PPI ratio must be between %.0f and %.0f", MinDPIToPPIRatio, MaxDPIToPPIRatio)
	}
	if c.PaperSize.IsCustom() {
		if c.PaperWidthMM < MinPaperMM || c.PaperWidthMM > MaxPaperMM ||
			c.PaperHeightMM < MinPaperMM || c.PaperHeightMM > MaxPaperMM {
			return invalidConfig("Custom paper dimensions must be between %.0fmm and %.0fmm", MinPaperMM, MaxPaperMM)
		}
	}
	return nil
}

func (c CaptureConfig) validateComputable() error {
	if !c.PaperSize.IsValid() {
		return invalidConfig("Invalid paper size: %s", c.PaperSize)
	}
	// Negated comparisons so NaN fails them too.
	if c.PaperSize.IsCustom() && !(c.PaperWidthMM > 0 && c.PaperHeightMM > 0) {
		return invalidConfig("Custom paper dimensions must be positive")
	}
	if !(c.DPI > 0) {
		return invalidConfig("DPI must be positive")
	}
	if !(c.DPIToPPIRatio >= MinDPIToPPIRatio) {
		return invalidConfig("DPI/PPI ratio must be at least %.0f", MinDPIToPPIRatio)
	}
	if c.MaximumPixels <= 0 {
		return invalidConfig("Maximum pixel count must be positive")
	}
	return nil
}

// Resolution is a pixel size
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width*Height without overflowing on 32-bit platforms
func (r Resolution) Area() int64 {
	return int64(r.Width) * int64(r.Height)
}

// Swapped returns the resolution with width and height exchanged
func (r Resolution) Swapped() Resolution {
	return Resolution{Width: r.Height, Height: r.Width}
}

// IsZero returns true if either side is zero
func (r Resolution) IsZero() bool {
	return r.Width == 0 || r.Height == 0
}

// String formats the resolution as WIDTHxHEIGHT
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}
