package capture

import (
	"time"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/domain/shared"
)

// maxSuffix bounds the search for a free name under CollisionSuffix
const maxSuffix = 1000

// Options are the pipeline knobs fixed for the lifetime of a Session
type Options struct {
	// PixelFormat of the encoded PNG (default: RGB24)
	PixelFormat capture.PixelFormat
	// Naming selects timestamped or fixed output names (default: TIMESTAMP)
	Naming capture.NamingStrategy
	// Collision decides what happens when the output name is taken (default: OVERWRITE)
	Collision capture.CollisionPolicy
	// YieldsAfterAllocate is the number of ticks between allocation and render (min 1)
	YieldsAfterAllocate int
	// YieldsAfterRender is the number of ticks between render and readback (min 1)
	YieldsAfterRender int
	// Locale of the status texts (default: en)
	Locale string
	// Clock returns the current time (default: time.Now)
	Clock func() time.Time
}

// DefaultOptions returns the options the legacy tool behaved with
func DefaultOptions() Options {
	return Options{
		PixelFormat:         capture.PixelFormatRGB24,
		Naming:              capture.NamingTimestamp,
		Collision:           capture.CollisionOverwrite,
		YieldsAfterAllocate: 1,
		YieldsAfterRender:   1,
		Locale:              "en",
		Clock:               time.Now,
	}
}

// withDefaults fills zero values and validates the rest
func (o Options) withDefaults() (Options, error) {
	d := DefaultOptions()
	if o.PixelFormat == "" {
		o.PixelFormat = d.PixelFormat
	}
	if o.Naming == "" {
		o.Naming = d.Naming
	}
	if o.Collision == "" {
		o.Collision = d.Collision
	}
	if o.YieldsAfterAllocate == 0 {
		o.YieldsAfterAllocate = d.YieldsAfterAllocate
	}
	if o.YieldsAfterRender == 0 {
		o.YieldsAfterRender = d.YieldsAfterRender
	}
	if o.Locale == "" {
		o.Locale = d.Locale
	}
	if o.Clock == nil {
		o.Clock = d.Clock
	}

	switch {
	case !o.PixelFormat.IsValid():
		return o, shared.NewDomainError(capture.CodeInvalidConfig, "Invalid pixel format: "+o.PixelFormat.String())
	case !o.Naming.IsValid():
		return o, shared.NewDomainError(capture.CodeInvalidConfig, "Invalid naming strategy: "+string(o.Naming))
	case !o.Collision.IsValid():
		return o, shared.NewDomainError(capture.CodeInvalidConfig, "Invalid collision policy: "+string(o.Collision))
	case o.YieldsAfterAllocate < 1 || o.YieldsAfterRender < 1:
		return o, shared.NewDomainError(capture.CodeInvalidConfig, "Yields per stage must be at least 1")
	}
	return o, nil
}
