package capture

import (
	"image"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
)

// PixelBuffer returns the CPU buffer held by the running capture
func PixelBuffer(s *Session) *image.NRGBA {
	if s.run == nil {
		return nil
	}
	return s.run.pixels
}

// SetStage moves the running capture without a transition check
func SetStage(s *Session, stage capture.Stage) {
	s.run.state.Stage = stage
}
