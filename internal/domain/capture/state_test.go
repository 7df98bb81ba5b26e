package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func advanceTo(t *testing.T, s *CaptureState, target Stage) {
	t.Helper()
	for s.Stage != target {
		n, ok := s.Stage.Next()
		require.True(t, ok)
		require.NoError(t, s.Advance(n, n.String()))
	}
}

func TestCaptureState_HappyPath(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s := NewCaptureState(DefaultCaptureConfig(), start)

	assert.Equal(t, StageIdle, s.Stage)
	assert.False(t, s.Running)

	advanceTo(t, s, StagePersisting)
	assert.True(t, s.Running)
	assert.Equal(t, "PERSISTING", s.Status)

	require.NoError(t, s.Complete("Saved.png", "/tmp/Saved.png", "done", start.Add(2*time.Second)))
	assert.True(t, s.IsCompleted())
	assert.True(t, s.IsTerminal())
	assert.False(t, s.Running)
	assert.Equal(t, "/tmp/Saved.png", s.Location)
	assert.Equal(t, 2*time.Second, s.Duration())

	events := s.PullEvents()
	// seven stage changes, the final transition and the completion
	require.Len(t, events, 9)
	assert.Equal(t, EventTypeCaptureStageChanged, events[0].EventType())
	assert.Equal(t, EventTypeCaptureCompleted, events[8].EventType())
	assert.Empty(t, s.PullEvents())
}

func TestCaptureState_Fail(t *testing.T) {
	now := time.Now()
	s := NewCaptureState(DefaultCaptureConfig(), now)
	advanceTo(t, s, StageResolving)
	s.PullEvents()

	require.NoError(t, s.Fail(CodePixelBudgetExceeded, "too big", now))
	assert.Equal(t, StageFailed, s.Stage)
	assert.Equal(t, StageResolving, s.FailedAt)
	assert.Equal(t, CodePixelBudgetExceeded, s.ErrorCode)
	assert.False(t, s.Running)

	events := s.PullEvents()
	require.Len(t, events, 2)
	failed, ok := events[1].(*CaptureFailedEvent)
	require.True(t, ok)
	assert.Equal(t, StageResolving, failed.Stage)
	assert.Equal(t, s.ID, failed.AggregateID())
}

func TestCaptureState_InvalidTransitions(t *testing.T) {
	now := time.Now()

	t.Run("cannot skip a stage", func(t *testing.T) {
		s := NewCaptureState(DefaultCaptureConfig(), now)
		assert.Error(t, s.Advance(StageResolving, ""))
		assert.Equal(t, StageIdle, s.Stage)
	})

	t.Run("cannot advance into a terminal stage", func(t *testing.T) {
		s := NewCaptureState(DefaultCaptureConfig(), now)
		advanceTo(t, s, StagePersisting)
		assert.Error(t, s.Advance(StageCompleted, ""))
	})

	t.Run("cannot complete before persisting", func(t *testing.T) {
		s := NewCaptureState(DefaultCaptureConfig(), now)
		advanceTo(t, s, StageEncoding)
		assert.Error(t, s.Complete("a.png", "a.png", "", now))
	})

	t.Run("cannot fail an idle capture", func(t *testing.T) {
		s := NewCaptureState(DefaultCaptureConfig(), now)
		assert.Error(t, s.Fail(CodeIOError, "", now))
	})

	t.Run("terminal state is final", func(t *testing.T) {
		s := NewCaptureState(DefaultCaptureConfig(), now)
		advanceTo(t, s, StageValidating)
		require.NoError(t, s.Fail(CodeNotActive, "", now))
		assert.Error(t, s.Fail(CodeNotActive, "", now))
		assert.Error(t, s.Advance(StageResolving, ""))
	})
}

func TestNewCaptureRecord(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewCaptureState(DefaultCaptureConfig(), now)
	advanceTo(t, s, StagePersisting)
	s.Resolution = Resolution{Width: 2893, Height: 4092}
	require.NoError(t, s.Complete("Saved.png", "out/Saved.png", "ok", now.Add(time.Second)))

	r := NewCaptureRecord(s)
	assert.Equal(t, s.ID, r.ID)
	assert.Equal(t, StageCompleted, r.Stage)
	assert.Equal(t, PaperSizeA4, r.PaperSize)
	assert.Equal(t, 2893, r.Width)
	assert.Equal(t, "out/Saved.png", r.Location)
	assert.Equal(t, now.Add(time.Second), r.FinishedAt)
}
