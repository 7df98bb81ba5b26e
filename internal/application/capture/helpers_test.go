package capture_test

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/chitosepg/cameracapture/internal/infrastructure/render"
	"github.com/chitosepg/cameracapture/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	xdraw "golang.org/x/image/draw"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockCaptureRecordRepository struct {
	mock.Mock
}

func (m *MockCaptureRecordRepository) Save(ctx context.Context, record *capture.CaptureRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCaptureRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*capture.CaptureRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*capture.CaptureRecord), args.Error(1)
}

func (m *MockCaptureRecordRepository) FindRecent(ctx context.Context, limit int) ([]capture.CaptureRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]capture.CaptureRecord), args.Error(1)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

// recordingTarget wraps an ImageTarget and notes the tick of every call
type recordingTarget struct {
	*render.ImageTarget
	tick      int
	calls     []string
	at        map[string]int
	surfaces  []render.Surface
	buffers   []*image.NRGBA
	renderErr error
}

func (t *recordingTarget) note(call string) {
	if t.at == nil {
		t.at = make(map[string]int)
	}
	t.calls = append(t.calls, call)
	t.at[call] = t.tick
}

func (t *recordingTarget) NewSurface(width, height int) (render.Surface, error) {
	t.note("allocate")
	s, err := t.ImageTarget.NewSurface(width, height)
	if err == nil {
		t.surfaces = append(t.surfaces, s)
	}
	return s, err
}

func (t *recordingTarget) Render(ctx context.Context) error {
	t.note("render")
	if t.renderErr != nil {
		return t.renderErr
	}
	return t.ImageTarget.Render(ctx)
}

func (t *recordingTarget) ReadPixels(ctx context.Context, dst *image.NRGBA) error {
	t.note("readback")
	t.buffers = append(t.buffers, dst)
	return t.ImageTarget.ReadPixels(ctx, dst)
}

// =============================================================================
// Fixture
// =============================================================================

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)

// smallConfig resolves to 58x82
func smallConfig() capture.CaptureConfig {
	cfg := capture.DefaultCaptureConfig()
	cfg.PaperSize = capture.PaperSizeA5
	cfg.DPI = 10
	return cfg
}

func newImageTarget() *render.ImageTarget {
	scene := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range scene.Pix {
		scene.Pix[i] = 0xff
	}
	return render.NewImageTarget(&render.ImageTargetConfig{
		Scene:  scene,
		Scaler: xdraw.NearestNeighbor,
	})
}

type fixture struct {
	target   *recordingTarget
	storage  *storage.MemoryStorage
	settings *captureapp.SettingsStore
	events   *recordingPublisher
	history  *MockCaptureRecordRepository
	session  *captureapp.Session
}

func newFixture(t *testing.T, cfg capture.CaptureConfig, opts captureapp.Options) *fixture {
	t.Helper()

	settings, err := captureapp.NewSettingsStore(cfg)
	require.NoError(t, err)

	if opts.Clock == nil {
		opts.Clock = func() time.Time { return fixedNow }
	}

	f := &fixture{
		target:   &recordingTarget{ImageTarget: newImageTarget()},
		storage:  storage.NewMemoryStorage(),
		settings: settings,
		events:   &recordingPublisher{},
		history:  new(MockCaptureRecordRepository),
	}
	f.history.On("Save", mock.Anything, mock.AnythingOfType("*capture.CaptureRecord")).Return(nil).Maybe()

	f.session, err = captureapp.NewSession(captureapp.SessionConfig{
		Target:   f.target,
		Storage:  f.storage,
		Settings: settings,
		Options:  opts,
		Events:   f.events,
		History:  f.history,
	})
	require.NoError(t, err)
	return f
}

// tick advances the session once, numbering the calls the target sees
func (f *fixture) tick(ctx context.Context) {
	f.target.tick++
	f.session.Tick(ctx)
}

// drain ticks until the running capture ends and returns the tick count
func (f *fixture) drain(t *testing.T) int {
	t.Helper()
	for i := 1; i <= 50; i++ {
		f.tick(context.Background())
		if !f.session.Running() {
			return i
		}
	}
	t.Fatal("capture did not finish within 50 ticks")
	return 0
}
