package capture

import "math"

// inchPerMilli converts millimetres to inches
const inchPerMilli = 1.0 / 25.4

// Resolve maps a capture configuration to the pixel size of the render target.
//
// Physical size comes from the paper table, or from the custom millimetre
// dimensions for CUSTOM. Width and height are exchanged after conversion to
// inches when Swap is set, then each side is scaled by DPI/sqrt(ratio) and
// truncated. An empty result is refused as invalid configuration. A result
// whose area exceeds MaximumPixels is refused with ErrPixelBudgetExceeded;
// it is never clamped.
func Resolve(cfg CaptureConfig) (Resolution, error) {
	if err := cfg.validateComputable(); err != nil {
		return Resolution{}, err
	}

	widthIn := cfg.PaperWidthMM * inchPerMilli
	heightIn := cfg.PaperHeightMM * inchPerMilli
	if !cfg.PaperSize.IsCustom() {
		w, h, ok := cfg.PaperSize.Dimensions()
		if !ok {
			return Resolution{}, invalidConfig("Paper size %s has no dimensions", cfg.PaperSize)
		}
		widthIn = float64(w) * inchPerMilli
		heightIn = float64(h) * inchPerMilli
	}
	if cfg.Swap {
		widthIn, heightIn = heightIn, widthIn
	}

	scale := cfg.DPI / math.Sqrt(cfg.DPIToPPIRatio)
	w := math.Floor(scale * widthIn)
	h := math.Floor(scale * heightIn)
	if !inPixelRange(w) || !inPixelRange(h) {
		return Resolution{}, invalidConfig("Resolution %gx%g is out of range", w, h)
	}

	res := Resolution{Width: int(w), Height: int(h)}
	if res.IsZero() {
		return Resolution{}, invalidConfig("Resolution %s is empty", res)
	}
	// Compared in float64 so the area cannot overflow before the guard.
	if w*h > float64(cfg.MaximumPixels) {
		return Resolution{}, pixelBudgetExceeded(res, cfg.MaximumPixels)
	}
	return res, nil
}

// inPixelRange reports whether a floored side length fits a surface
// dimension. NaN and infinities are out of range.
func inPixelRange(v float64) bool {
	return v >= 0 && v <= math.MaxInt32
}
