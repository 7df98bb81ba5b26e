package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLoopStopped is returned when a request reaches a loop that is not running
var ErrLoopStopped = errors.New("capture loop is not running")

// DefaultTickInterval approximates one frame at 60 fps
const DefaultTickInterval = 16 * time.Millisecond

// Snapshot is a consistent view of a Session, safe to read from any goroutine
type Snapshot struct {
	Running    bool
	CaptureID  uuid.UUID
	Stage      capture.Stage
	Status     string
	LastResult *Result
}

type requestKind int

const (
	requestCapture requestKind = iota
	requestCancel
)

type request struct {
	kind  requestKind
	reply chan reply
}

type reply struct {
	id       uuid.UUID
	accepted bool
}

// Loop owns a Session and ticks it on a fixed interval from a single
// goroutine. Requests from other goroutines are serialized through a channel.
type Loop struct {
	session  *Session
	interval time.Duration
	logger   *zap.Logger

	requests chan request
	stopped  chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.RWMutex
	started  bool
	snapshot Snapshot
}

// NewLoop creates a loop around session. A zero interval uses DefaultTickInterval.
func NewLoop(session *Session, interval time.Duration, logger *zap.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		session:  session,
		interval: interval,
		logger:   logger,
		requests: make(chan request),
		snapshot: Snapshot{Stage: capture.StageIdle},
	}
}

// Start launches the tick goroutine. A loop can be started once.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return errors.New("capture loop already started")
	}
	l.started = true

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.stopped = make(chan struct{})

	l.wg.Add(1)
	go l.run(ctx)

	l.logger.Info("capture loop started", zap.Duration("tick_interval", l.interval))
	return nil
}

// Stop cancels the loop and waits for it to exit. A capture still running is
// aborted with CANCELLED.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.RLock()
	cancel := l.cancel
	l.mu.RUnlock()
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.logger.Info("capture loop stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestCapture asks the loop to start a capture. accepted is false when a
// capture is already running.
func (l *Loop) RequestCapture(ctx context.Context) (id uuid.UUID, accepted bool, err error) {
	rep, err := l.send(ctx, requestCapture)
	return rep.id, rep.accepted, err
}

// Cancel asks the loop to abort the running capture. It returns false when
// nothing was running.
func (l *Loop) Cancel(ctx context.Context) (bool, error) {
	rep, err := l.send(ctx, requestCancel)
	return rep.accepted, err
}

// Snapshot returns the state published after the latest tick or request
func (l *Loop) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

func (l *Loop) send(ctx context.Context, kind requestKind) (reply, error) {
	l.mu.RLock()
	stopped := l.stopped
	l.mu.RUnlock()
	if stopped == nil {
		return reply{}, ErrLoopStopped
	}

	req := request{kind: kind, reply: make(chan reply, 1)}
	select {
	case l.requests <- req:
	case <-stopped:
		return reply{}, ErrLoopStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}

	select {
	case rep := <-req.reply:
		return rep, nil
	case <-stopped:
		return reply{}, ErrLoopStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()
	defer close(l.stopped)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// One last tick observes the cancellation and releases the run
			l.session.Tick(ctx)
			l.publishSnapshot()
			return
		case req := <-l.requests:
			rep := l.handle(ctx, req)
			l.publishSnapshot()
			req.reply <- rep
		case <-ticker.C:
			l.session.Tick(ctx)
			l.publishSnapshot()
		}
	}
}

func (l *Loop) handle(ctx context.Context, req request) reply {
	var rep reply
	switch req.kind {
	case requestCapture:
		rep.id, rep.accepted = l.session.RequestCapture(ctx)
	case requestCancel:
		rep.accepted = l.session.Cancel(ctx)
	}
	return rep
}

func (l *Loop) publishSnapshot() {
	s := Snapshot{
		Running:    l.session.Running(),
		CaptureID:  l.session.CaptureID(),
		Stage:      l.session.Stage(),
		Status:     l.session.Status(),
		LastResult: l.session.LastResult(),
	}
	l.mu.Lock()
	l.snapshot = s
	l.mu.Unlock()
}
