package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/domain/shared"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = &MetricsError{Op: "NewCaptureMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// CaptureMetrics turns capture events into OpenTelemetry instruments.
// It subscribes to the event bus like any other handler.
type CaptureMetrics struct {
	logger *zap.Logger

	capturesTotal *Counter
	duration      *Histogram
	pixels        *Histogram
	inProgress    *UpDownCounter
	lastPixels    *Gauge
}

// NewCaptureMetrics creates the capture instruments on meter.
func NewCaptureMetrics(meter metric.Meter, logger *zap.Logger) (*CaptureMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CaptureMetrics{logger: logger}

	var err error
	cm.capturesTotal, err = NewCounter(meter,
		"capture_captures_total",
		"Total number of finished captures by outcome",
		"{captures}",
	)
	if err != nil {
		return nil, err
	}

	cm.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "capture_duration_seconds",
		Description: "Time from request to completion or failure",
		Unit:        "s",
		Boundaries:  CaptureDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	cm.pixels, err = NewHistogram(meter, HistogramOpts{
		Name:        "capture_pixels",
		Description: "Pixel count of persisted captures",
		Unit:        "{pixels}",
		Boundaries:  PixelCountBuckets,
	})
	if err != nil {
		return nil, err
	}

	cm.inProgress, err = NewUpDownCounter(meter,
		"capture_in_progress",
		"Captures currently running",
		"{captures}",
	)
	if err != nil {
		return nil, err
	}

	cm.lastPixels, err = NewGauge(meter,
		"capture_last_pixels",
		"Pixel count of the most recent persisted capture",
		"{pixels}",
	)
	if err != nil {
		return nil, err
	}

	return cm, nil
}

// EventTypes implements shared.EventHandler.
func (m *CaptureMetrics) EventTypes() []string {
	return []string{
		capture.EventTypeCaptureStageChanged,
		capture.EventTypeCaptureCompleted,
		capture.EventTypeCaptureFailed,
	}
}

// Handle implements shared.EventHandler.
func (m *CaptureMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *capture.CaptureStageChangedEvent:
		if e.FromStage == capture.StageIdle && e.ToStage == capture.StageValidating {
			m.inProgress.Add(ctx, 1)
		}
	case *capture.CaptureCompletedEvent:
		m.inProgress.Add(ctx, -1)
		m.capturesTotal.Inc(ctx, AttrOutcome.String("completed"))
		m.duration.RecordDuration(ctx, e.Duration, AttrOutcome.String("completed"))
		area := e.Resolution.Area()
		m.pixels.Record(ctx, float64(area))
		m.lastPixels.Record(ctx, area)
	case *capture.CaptureFailedEvent:
		m.inProgress.Add(ctx, -1)
		m.capturesTotal.Inc(ctx,
			AttrOutcome.String("failed"),
			AttrErrorCode.String(e.ErrorCode),
			AttrStage.String(e.Stage.String()),
		)
		m.duration.RecordDuration(ctx, e.Duration, AttrOutcome.String("failed"))
	default:
		m.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*CaptureMetrics)(nil)
