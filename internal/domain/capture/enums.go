package capture

// PaperSize represents the paper size a capture is laid out for
type PaperSize string

const (
	PaperSizeA0     PaperSize = "A0"     // 841mm x 1189mm
	PaperSizeA1     PaperSize = "A1"     // 594mm x 841mm
	PaperSizeA2     PaperSize = "A2"     // 420mm x 594mm
	PaperSizeA3     PaperSize = "A3"     // 297mm x 420mm
	PaperSizeA4     PaperSize = "A4"     // 210mm x 297mm
	PaperSizeA5     PaperSize = "A5"     // 148mm x 210mm
	PaperSizeB0     PaperSize = "B0"     // 1030mm x 1456mm
	PaperSizeB1     PaperSize = "B1"     // 728mm x 1030mm
	PaperSizeB2     PaperSize = "B2"     // 515mm x 728mm
	PaperSizeB3     PaperSize = "B3"     // 364mm x 515mm
	PaperSizeB4     PaperSize = "B4"     // 257mm x 364mm
	PaperSizeB5     PaperSize = "B5"     // 182mm x 257mm
	PaperSizeCustom PaperSize = "CUSTOM" // explicit width/height in mm
)

// paperDimensions is the fixed millimetre table for every non-custom size.
// B sizes follow JIS P 0138.
var paperDimensions = map[PaperSize][2]int{
	PaperSizeA0: {841, 1189},
	PaperSizeA1: {594, 841},
	PaperSizeA2: {420, 594},
	PaperSizeA3: {297, 420},
	PaperSizeA4: {210, 297},
	PaperSizeA5: {148, 210},
	PaperSizeB0: {1030, 1456},
	PaperSizeB1: {728, 1030},
	PaperSizeB2: {515, 728},
	PaperSizeB3: {364, 515},
	PaperSizeB4: {257, 364},
	PaperSizeB5: {182, 257},
}

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	if p == PaperSizeCustom {
		return true
	}
	_, ok := paperDimensions[p]
	return ok
}

// IsCustom returns true when explicit dimensions must be supplied
func (p PaperSize) IsCustom() bool {
	return p == PaperSizeCustom
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters (width, height).
// ok is false for CUSTOM and for values outside the table.
func (p PaperSize) Dimensions() (width, height int, ok bool) {
	d, ok := paperDimensions[p]
	if !ok {
		return 0, 0, false
	}
	return d[0], d[1], true
}

// AllPaperSizes returns all valid PaperSize values, table entries first
func AllPaperSizes() []PaperSize {
	return []PaperSize{
		PaperSizeA0, PaperSizeA1, PaperSizeA2, PaperSizeA3, PaperSizeA4, PaperSizeA5,
		PaperSizeB0, PaperSizeB1, PaperSizeB2, PaperSizeB3, PaperSizeB4, PaperSizeB5,
		PaperSizeCustom,
	}
}

// PixelFormat selects the channel layout of the encoded image
type PixelFormat string

const (
	PixelFormatRGBA32 PixelFormat = "RGBA32" // 8-bit RGB plus alpha
	PixelFormatRGB24  PixelFormat = "RGB24"  // 8-bit RGB, alpha discarded
)

// IsValid checks if the PixelFormat is a valid value
func (f PixelFormat) IsValid() bool {
	return f == PixelFormatRGBA32 || f == PixelFormatRGB24
}

// HasAlpha returns true if the format keeps the alpha channel
func (f PixelFormat) HasAlpha() bool {
	return f == PixelFormatRGBA32
}

// String returns the string representation of PixelFormat
func (f PixelFormat) String() string {
	return string(f)
}

// NamingStrategy selects how output files are named
type NamingStrategy string

const (
	NamingTimestamp NamingStrategy = "TIMESTAMP" // Saved-YYYY-MM-DD_HH-MM-SS.png
	NamingFixed     NamingStrategy = "FIXED"     // SavedScreen.png
)

// IsValid checks if the NamingStrategy is a valid value
func (n NamingStrategy) IsValid() bool {
	return n == NamingTimestamp || n == NamingFixed
}

// CollisionPolicy decides what happens when the output name is already taken
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "OVERWRITE" // last write wins
	CollisionSuffix    CollisionPolicy = "SUFFIX"    // append -1, -2, ...
)

// IsValid checks if the CollisionPolicy is a valid value
func (c CollisionPolicy) IsValid() bool {
	return c == CollisionOverwrite || c == CollisionSuffix
}

// Stage represents a step of the capture state machine
type Stage string

const (
	StageIdle              Stage = "IDLE"
	StageValidating        Stage = "VALIDATING"
	StageResolving         Stage = "RESOLVING"
	StageAllocatingSurface Stage = "ALLOCATING_SURFACE"
	StageRendering         Stage = "RENDERING"
	StageReadingBack       Stage = "READING_BACK"
	StageEncoding          Stage = "ENCODING"
	StagePersisting        Stage = "PERSISTING"
	StageCompleted         Stage = "COMPLETED"
	StageFailed            Stage = "FAILED"
)

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal stage (no further transitions)
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageFailed
}

// next maps every non-terminal stage to the stage that follows it on success
var next = map[Stage]Stage{
	StageIdle:              StageValidating,
	StageValidating:        StageResolving,
	StageResolving:         StageAllocatingSurface,
	StageAllocatingSurface: StageRendering,
	StageRendering:         StageReadingBack,
	StageReadingBack:       StageEncoding,
	StageEncoding:          StagePersisting,
	StagePersisting:        StageCompleted,
}

// Next returns the stage that follows s on success
func (s Stage) Next() (Stage, bool) {
	n, ok := next[s]
	return n, ok
}

// CanTransitionTo checks if the stage can transition to the target stage.
// Stages advance strictly in order; any running stage may fail.
func (s Stage) CanTransitionTo(target Stage) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StageFailed {
		return s != StageIdle
	}
	n, ok := next[s]
	return ok && n == target
}
