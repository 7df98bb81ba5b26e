package main

import (
	"context"
	"errors"
	"time"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
)

// drive requests one capture and ticks the session until it finishes.
// Cancelling ctx still ticks once more so the run can release its surface
// and report CANCELLED.
func drive(ctx context.Context, session *captureapp.Session, interval time.Duration) (*captureapp.Result, error) {
	if _, accepted := session.RequestCapture(ctx); !accepted {
		return nil, errors.New("a capture is already running")
	}

	if interval <= 0 {
		interval = captureapp.DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for session.Running() {
		select {
		case <-ctx.Done():
			session.Tick(ctx)
		case <-ticker.C:
			session.Tick(ctx)
		}
	}
	return session.LastResult(), nil
}
