package event

import (
	"github.com/chitosepg/cameracapture/internal/domain/capture"
)

// RegisterCaptureEvents registers the capture event types with the serializer
func RegisterCaptureEvents(serializer *EventSerializer) {
	serializer.Register(capture.EventTypeCaptureStageChanged, &capture.CaptureStageChangedEvent{})
	serializer.Register(capture.EventTypeCaptureCompleted, &capture.CaptureCompletedEvent{})
	serializer.Register(capture.EventTypeCaptureFailed, &capture.CaptureFailedEvent{})
}
