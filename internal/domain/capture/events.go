package capture

import (
	"time"

	"github.com/chitosepg/cameracapture/internal/domain/shared"
)

// AggregateTypeCapture is the aggregate type for capture events
const AggregateTypeCapture = "Capture"

// Event type constants
const (
	EventTypeCaptureStageChanged = "CaptureStageChanged"
	EventTypeCaptureCompleted    = "CaptureCompleted"
	EventTypeCaptureFailed       = "CaptureFailed"
)

// CaptureStageChangedEvent is published on every stage transition, carrying
// the status text shown to observers
type CaptureStageChangedEvent struct {
	shared.BaseDomainEvent
	FromStage Stage  `json:"from_stage"`
	ToStage   Stage  `json:"to_stage"`
	Status    string `json:"status"`
}

// NewCaptureStageChangedEvent creates a new CaptureStageChangedEvent
func NewCaptureStageChangedEvent(state *CaptureState, from, to Stage) *CaptureStageChangedEvent {
	return &CaptureStageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaptureStageChanged, AggregateTypeCapture, state.ID),
		FromStage:       from,
		ToStage:         to,
		Status:          state.Status,
	}
}

// CaptureCompletedEvent is published when a capture has been persisted
type CaptureCompletedEvent struct {
	shared.BaseDomainEvent
	Resolution Resolution    `json:"resolution"`
	FileName   string        `json:"file_name"`
	Location   string        `json:"location"`
	Status     string        `json:"status"`
	Duration   time.Duration `json:"duration"`
}

// NewCaptureCompletedEvent creates a new CaptureCompletedEvent
func NewCaptureCompletedEvent(state *CaptureState) *CaptureCompletedEvent {
	return &CaptureCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaptureCompleted, AggregateTypeCapture, state.ID),
		Resolution:      state.Resolution,
		FileName:        state.FileName,
		Location:        state.Location,
		Status:          state.Status,
		Duration:        state.Duration(),
	}
}

// CaptureFailedEvent is published when a capture ends without output
type CaptureFailedEvent struct {
	shared.BaseDomainEvent
	Stage     Stage         `json:"stage"`
	ErrorCode string        `json:"error_code"`
	Status    string        `json:"status"`
	Duration  time.Duration `json:"duration"`
}

// NewCaptureFailedEvent creates a new CaptureFailedEvent
func NewCaptureFailedEvent(state *CaptureState, stage Stage) *CaptureFailedEvent {
	return &CaptureFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaptureFailed, AggregateTypeCapture, state.ID),
		Stage:           stage,
		ErrorCode:       state.ErrorCode,
		Status:          state.Status,
		Duration:        state.Duration(),
	}
}
