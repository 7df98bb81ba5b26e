// Package capture contains the domain model for print-resolution captures:
// paper sizes, the resolution resolver, capture stages and the per-run
// capture state.
//
// The resolver is a pure function. Given a paper size (or custom millimetre
// dimensions), a swap flag, a print DPI and a DPI/PPI ratio it returns the
// pixel size of the render target, refusing resolutions whose area exceeds
// the configured pixel budget:
//
//	cfg := capture.CaptureConfig{
//	    PaperSize:     capture.PaperSizeA4,
//	    DPI:           350,
//	    DPIToPPIRatio: 1,
//	    MaximumPixels: 18_000_000,
//	}
//	res, err := capture.Resolve(cfg) // 2893 x 4092
package capture
