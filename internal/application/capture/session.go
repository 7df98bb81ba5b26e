package capture

import (
	"context"
	"errors"
	"image"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/chitosepg/cameracapture/internal/infrastructure/render"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionConfig contains the collaborators of a Session
type SessionConfig struct {
	Target   render.Target
	Storage  OutputStorage
	Settings *SettingsStore
	Options  Options
	// Events receives the capture's domain events (optional)
	Events shared.EventPublisher
	// History stores a record of every finished run (optional)
	History capture.CaptureRecordRepository
	// Logger for pipeline output
	Logger *zap.Logger
}

// run is the in-flight capture; it owns the surface and pixel buffer
type run struct {
	state      *capture.CaptureState
	surface    render.Surface
	pixels     *image.NRGBA
	encoded    []byte
	yieldsLeft int
}

// Session drives capture runs through the stage machine. A run advances
// only when Tick is called; allocation and render are each followed by a
// configurable number of ticks before the next stage, so render issue and
// readback are never in the same tick.
//
// A Session is not safe for concurrent use. RequestCapture, Cancel and Tick
// must be called from one goroutine; see Loop for cross-goroutine access.
type Session struct {
	target   render.Target
	storage  OutputStorage
	settings *SettingsStore
	opts     Options
	catalog  *capture.StatusCatalog
	events   shared.EventPublisher
	history  capture.CaptureRecordRepository
	logger   *zap.Logger

	run    *run
	status string
	last   *Result
}

// NewSession creates an idle Session
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Target == nil {
		return nil, errors.New("render target is required")
	}
	if cfg.Storage == nil {
		return nil, errors.New("output storage is required")
	}
	if cfg.Settings == nil {
		return nil, errors.New("settings store is required")
	}
	opts, err := cfg.Options.withDefaults()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		target:   cfg.Target,
		storage:  cfg.Storage,
		settings: cfg.Settings,
		opts:     opts,
		catalog:  capture.NewStatusCatalog(opts.Locale),
		events:   cfg.Events,
		history:  cfg.History,
		logger:   logger,
	}, nil
}

// RequestCapture starts a capture with a snapshot of the current settings.
// While a capture is running the request is ignored: it returns false and
// leaves status and state untouched.
func (s *Session) RequestCapture(ctx context.Context) (uuid.UUID, bool) {
	if s.run != nil {
		s.logger.Debug("capture already running, request ignored",
			zap.String("capture_id", s.run.state.ID.String()))
		return uuid.Nil, false
	}

	state := capture.NewCaptureState(s.settings.Current(), s.opts.Clock())
	s.run = &run{state: state}
	s.advance(ctx, capture.StageValidating, s.catalog.Validating())

	s.logger.Info("capture requested",
		zap.String("capture_id", state.ID.String()),
		zap.String("paper_size", state.Config.PaperSize.String()),
		zap.Float64("dpi", state.Config.DPI))
	return state.ID, true
}

// Cancel aborts the running capture. It returns false when nothing is running.
func (s *Session) Cancel(ctx context.Context) bool {
	if s.run == nil {
		return false
	}
	s.fail(ctx, capture.CodeCancelled, s.catalog.Cancelled(), capture.ErrCancelled)
	return true
}

// Tick advances the running capture until it reaches a yield point or ends.
// A cancelled ctx aborts the run with CANCELLED.
func (s *Session) Tick(ctx context.Context) {
	if s.run == nil {
		return
	}
	if err := ctx.Err(); err != nil {
		s.fail(ctx, capture.CodeCancelled, s.catalog.Cancelled(), errors.Join(capture.ErrCancelled, err))
		return
	}

	if s.run.yieldsLeft > 0 {
		s.run.yieldsLeft--
		if s.run.yieldsLeft > 0 {
			return
		}
	}

	for s.run != nil && s.run.yieldsLeft == 0 {
		s.step(ctx)
	}
}

// Running reports whether a capture is in flight (the re-entry guard)
func (s *Session) Running() bool {
	return s.run != nil
}

// Status returns the latest status text; it survives the end of a run
func (s *Session) Status() string {
	return s.status
}

// Stage returns the stage of the running capture, or IDLE
func (s *Session) Stage() capture.Stage {
	if s.run == nil {
		return capture.StageIdle
	}
	return s.run.state.Stage
}

// CaptureID returns the id of the running capture, or uuid.Nil
func (s *Session) CaptureID() uuid.UUID {
	if s.run == nil {
		return uuid.Nil
	}
	return s.run.state.ID
}

// LastResult returns the outcome of the most recent finished run, or nil
func (s *Session) LastResult() *Result {
	return s.last
}

// step performs the work of the current stage and moves to the next one
func (s *Session) step(ctx context.Context) {
	r := s.run
	switch r.state.Stage {
	case capture.StageValidating:
		if !s.target.IsActive() {
			s.fail(ctx, capture.CodeNotActive, s.catalog.Inactive(), capture.ErrNotActive)
			return
		}
		s.advance(ctx, capture.StageResolving, s.catalog.Resolving())

	case capture.StageResolving:
		res, err := capture.Resolve(r.state.Config)
		if err != nil {
			var budgetErr *capture.PixelBudgetError
			if errors.As(err, &budgetErr) {
				s.fail(ctx, capture.CodePixelBudgetExceeded,
					s.catalog.OverBudget(budgetErr.Resolution, budgetErr.Maximum), err)
				return
			}
			s.fail(ctx, capture.CodeInvalidConfig, s.catalog.InvalidConfig(err.Error()), err)
			return
		}
		r.state.Resolution = res
		s.advance(ctx, capture.StageAllocatingSurface, s.catalog.Allocating(res))

	case capture.StageAllocatingSurface:
		s.releaseBoundSurface()
		res := r.state.Resolution
		surface, err := s.target.NewSurface(res.Width, res.Height)
		if err != nil {
			s.fail(ctx, capture.CodeRenderFailed, s.catalog.RenderFailed(err.Error()), err)
			return
		}
		r.surface = surface
		// The CPU buffer lives alongside the surface until encoding.
		r.pixels = image.NewNRGBA(image.Rect(0, 0, res.Width, res.Height))
		r.yieldsLeft = s.opts.YieldsAfterAllocate
		s.advance(ctx, capture.StageRendering, s.catalog.Rendering())

	case capture.StageRendering:
		s.target.BindOffscreenSurface(r.surface)
		if err := s.target.Render(ctx); err != nil {
			s.fail(ctx, capture.CodeRenderFailed, s.catalog.RenderFailed(err.Error()), err)
			return
		}
		r.yieldsLeft = s.opts.YieldsAfterRender
		s.advance(ctx, capture.StageReadingBack, s.catalog.ReadingBack())

	case capture.StageReadingBack:
		err := s.target.ReadPixels(ctx, r.pixels)
		s.releaseSurface()
		if err != nil {
			s.fail(ctx, capture.CodeRenderFailed, s.catalog.RenderFailed(err.Error()), err)
			return
		}
		s.advance(ctx, capture.StageEncoding, s.catalog.Encoding())

	case capture.StageEncoding:
		encoded, err := render.EncodePNG(r.pixels, s.opts.PixelFormat)
		r.pixels = nil
		if err != nil {
			s.fail(ctx, capture.CodeRenderFailed, s.catalog.RenderFailed(err.Error()), err)
			return
		}
		r.encoded = encoded
		s.advance(ctx, capture.StagePersisting, s.catalog.Persisting())

	case capture.StagePersisting:
		s.persist(ctx)

	default:
		// IDLE and terminal stages never stay on a run
		s.logger.Error("capture in unexpected stage", zap.String("stage", r.state.Stage.String()))
		s.fail(ctx, capture.CodeInvalidState, s.catalog.Internal("unexpected stage "+r.state.Stage.String()), shared.ErrInvalidState)
	}
}

// persist names and writes the encoded image, then completes the run
func (s *Session) persist(ctx context.Context) {
	r := s.run
	name, err := s.outputName(ctx)
	if err != nil {
		s.fail(ctx, capture.CodeIOError, s.catalog.IOFailed(err.Error()), errors.Join(capture.ErrIO, err))
		return
	}

	location, err := s.storage.Write(ctx, name, r.encoded)
	if err != nil {
		s.fail(ctx, capture.CodeIOError, s.catalog.IOFailed(err.Error()), errors.Join(capture.ErrIO, err))
		return
	}

	size := len(r.encoded)
	r.encoded = nil
	if err := r.state.Complete(name, location, s.catalog.Completed(r.state.Resolution), s.opts.Clock()); err != nil {
		s.logger.Error("failed to complete capture", zap.Error(err))
	}
	s.status = r.state.Status

	s.logger.Info("capture saved",
		zap.String("capture_id", r.state.ID.String()),
		zap.String("location", location),
		zap.Int("width", r.state.Resolution.Width),
		zap.Int("height", r.state.Resolution.Height),
		zap.Int("bytes", size))
	s.finish(ctx, nil, size)
}

// outputName picks the file name from the clock, applying the collision policy
func (s *Session) outputName(ctx context.Context) (string, error) {
	name := capture.FileName(s.opts.Naming, s.opts.Clock())
	if s.opts.Collision == capture.CollisionOverwrite {
		return name, nil
	}

	for n := 0; n <= maxSuffix; n++ {
		candidate := capture.SuffixedFileName(name, n)
		taken, err := s.storage.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.New("no free output name for " + name)
}

// advance moves the run to the next stage
func (s *Session) advance(ctx context.Context, target capture.Stage, status string) {
	state := s.run.state
	if err := state.Advance(target, status); err != nil {
		s.logger.Error("invalid capture transition",
			zap.String("from", state.Stage.String()),
			zap.String("to", target.String()),
			zap.Error(err))
		s.fail(ctx, capture.CodeInvalidState, s.catalog.Internal(err.Error()), err)
		return
	}
	s.status = status
	s.logger.Debug("capture stage",
		zap.String("capture_id", state.ID.String()),
		zap.String("stage", target.String()))
	s.publish(ctx)
}

// fail ends the run, releasing everything it holds
func (s *Session) fail(ctx context.Context, code, status string, cause error) {
	r := s.run
	s.releaseSurface()
	r.pixels = nil
	r.encoded = nil

	if err := r.state.Fail(code, status, s.opts.Clock()); err != nil {
		// The stage machine refused the transition; record the outcome anyway.
		s.logger.Error("failed to fail capture", zap.Error(err))
		now := s.opts.Clock()
		r.state.FailedAt = r.state.Stage
		r.state.Stage = capture.StageFailed
		r.state.ErrorCode = code
		r.state.Status = status
		r.state.Running = false
		r.state.FinishedAt = &now
	}
	s.status = status

	s.logger.Warn("capture failed",
		zap.String("capture_id", r.state.ID.String()),
		zap.String("stage", r.state.FailedAt.String()),
		zap.String("code", code),
		zap.Error(cause))
	s.finish(ctx, cause, 0)
}

// finish archives the result and clears the guard
func (s *Session) finish(ctx context.Context, cause error, size int) {
	state := s.run.state
	s.last = newResult(state, cause, size)
	s.run = nil

	// Bookkeeping must survive a cancelled tick
	ctx = context.WithoutCancel(ctx)
	s.publishEvents(ctx, state.PullEvents())
	if s.history != nil {
		if err := s.history.Save(ctx, capture.NewCaptureRecord(state)); err != nil {
			s.logger.Error("failed to save capture history", zap.Error(err))
		}
	}
}

// releaseBoundSurface frees whatever surface the target currently renders to
func (s *Session) releaseBoundSurface() {
	if bound := s.target.BoundSurface(); bound != nil {
		s.target.BindOffscreenSurface(nil)
		bound.Release()
	}
}

// releaseSurface unbinds and frees the run's surface
func (s *Session) releaseSurface() {
	r := s.run
	if r == nil || r.surface == nil {
		return
	}
	if s.target.BoundSurface() == r.surface {
		s.target.BindOffscreenSurface(nil)
	}
	r.surface.Release()
	r.surface = nil
}

func (s *Session) publish(ctx context.Context) {
	if s.run == nil {
		return
	}
	s.publishEvents(ctx, s.run.state.PullEvents())
}

func (s *Session) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish capture events", zap.Error(err))
	}
}
