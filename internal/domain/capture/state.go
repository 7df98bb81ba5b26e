package capture

import (
	"time"

	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/google/uuid"
)

// CaptureState is the ephemeral state of one capture run. It is created when
// a capture is requested and discarded once the run reaches a terminal stage.
type CaptureState struct {
	ID         uuid.UUID
	Stage      Stage
	Status     string
	Running    bool
	Config     CaptureConfig // snapshot taken at request time
	Resolution Resolution
	FileName   string
	Location   string
	ErrorCode  string
	FailedAt   Stage // stage that was running when the capture failed
	StartedAt  time.Time
	FinishedAt *time.Time

	events []shared.DomainEvent
}

// NewCaptureState creates an idle capture state for the given configuration
func NewCaptureState(cfg CaptureConfig, now time.Time) *CaptureState {
	return &CaptureState{
		ID:        uuid.New(),
		Stage:     StageIdle,
		Config:    cfg,
		StartedAt: now,
	}
}

// Advance moves the capture to target and replaces the status text
func (s *CaptureState) Advance(target Stage, status string) error {
	if target.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Use Complete or Fail to end a capture, not Advance to "+target.String())
	}
	if !s.Stage.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot move capture from "+s.Stage.String()+" to "+target.String())
	}

	from := s.Stage
	s.Stage = target
	s.Status = status
	s.Running = true
	s.events = append(s.events, NewCaptureStageChangedEvent(s, from, target))
	return nil
}

// SetStatus replaces the status text without changing stage
func (s *CaptureState) SetStatus(status string) {
	s.Status = status
}

// Complete marks the capture as persisted at location
func (s *CaptureState) Complete(fileName, location, status string, now time.Time) error {
	if !s.Stage.CanTransitionTo(StageCompleted) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot complete capture from stage: "+s.Stage.String())
	}

	from := s.Stage
	s.Stage = StageCompleted
	s.Status = status
	s.FileName = fileName
	s.Location = location
	s.Running = false
	s.FinishedAt = &now
	s.events = append(s.events,
		NewCaptureStageChangedEvent(s, from, StageCompleted),
		NewCaptureCompletedEvent(s))
	return nil
}

// Fail ends the capture with the given error code
func (s *CaptureState) Fail(code, status string, now time.Time) error {
	if !s.Stage.CanTransitionTo(StageFailed) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot fail capture from stage: "+s.Stage.String())
	}

	from := s.Stage
	s.Stage = StageFailed
	s.FailedAt = from
	s.Status = status
	s.ErrorCode = code
	s.Running = false
	s.FinishedAt = &now
	s.events = append(s.events,
		NewCaptureStageChangedEvent(s, from, StageFailed),
		NewCaptureFailedEvent(s, from))
	return nil
}

// IsTerminal returns true if the capture has ended
func (s *CaptureState) IsTerminal() bool {
	return s.Stage.IsTerminal()
}

// IsCompleted returns true if the capture produced an output file
func (s *CaptureState) IsCompleted() bool {
	return s.Stage == StageCompleted
}

// PullEvents returns the pending domain events and clears them
func (s *CaptureState) PullEvents() []shared.DomainEvent {
	events := s.events
	s.events = nil
	return events
}

// Duration returns how long the capture ran, or zero while it is running
func (s *CaptureState) Duration() time.Duration {
	if s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
