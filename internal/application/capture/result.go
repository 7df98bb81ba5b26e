package capture

import (
	"time"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/google/uuid"
)

// Result is the archived outcome of one capture run
type Result struct {
	ID         uuid.UUID
	Stage      capture.Stage // COMPLETED or FAILED
	FailedAt   capture.Stage // stage that was running on failure
	ErrorCode  string
	Err        error
	Status     string
	Resolution capture.Resolution
	FileName   string
	Location   string
	Bytes      int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded returns true if the capture wrote an output file
func (r *Result) Succeeded() bool {
	return r != nil && r.Stage == capture.StageCompleted
}

// Duration returns how long the run took
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func newResult(state *capture.CaptureState, err error, size int) *Result {
	r := &Result{
		ID:         state.ID,
		Stage:      state.Stage,
		ErrorCode:  state.ErrorCode,
		Err:        err,
		Status:     state.Status,
		Resolution: state.Resolution,
		FileName:   state.FileName,
		Location:   state.Location,
		Bytes:      size,
		StartedAt:  state.StartedAt,
		FinishedAt: state.StartedAt,
	}
	if state.Stage == capture.StageFailed {
		r.FailedAt = state.FailedAt
	}
	if state.FinishedAt != nil {
		r.FinishedAt = *state.FinishedAt
	}
	return r
}
