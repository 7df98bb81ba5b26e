package capture

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/chitosepg/cameracapture/internal/infrastructure/render"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// activeSwitch is implemented by targets that can be paused
type activeSwitch interface {
	SetActive(active bool)
}

// CaptureService exposes capture operations to the interface layer
type CaptureService struct {
	loop     *Loop
	settings *SettingsStore
	history  capture.CaptureRecordRepository
	storage  OutputStorage
	target   render.Target
	logger   *zap.Logger
}

// NewCaptureService creates a new CaptureService. history may be nil.
func NewCaptureService(
	loop *Loop,
	settings *SettingsStore,
	history capture.CaptureRecordRepository,
	storage OutputStorage,
	target render.Target,
	logger *zap.Logger,
) *CaptureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureService{
		loop:     loop,
		settings: settings,
		history:  history,
		storage:  storage,
		target:   target,
		logger:   logger,
	}
}

// =============================================================================
// Capture Operations
// =============================================================================

// RequestCapture starts a capture unless one is already running
func (s *CaptureService) RequestCapture(ctx context.Context) (*CaptureRequestResponse, error) {
	id, accepted, err := s.loop.RequestCapture(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to request capture: %w", err)
	}

	snap := s.loop.Snapshot()
	resp := &CaptureRequestResponse{
		Accepted: accepted,
		Status:   snap.Status,
	}
	if accepted {
		resp.CaptureID = id.String()
	} else if snap.Running {
		resp.CaptureID = snap.CaptureID.String()
	}
	return resp, nil
}

// Cancel aborts the running capture. It returns false when nothing was running.
func (s *CaptureService) Cancel(ctx context.Context) (bool, error) {
	cancelled, err := s.loop.Cancel(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to cancel capture: %w", err)
	}
	return cancelled, nil
}

// Status returns the loop state and the outcome of the last capture
func (s *CaptureService) Status() *StatusResponse {
	snap := s.loop.Snapshot()
	resp := &StatusResponse{
		Running: snap.Running,
		Stage:   snap.Stage.String(),
		Status:  snap.Status,
		Last:    toResultResponse(snap.LastResult),
	}
	if snap.Running {
		resp.CaptureID = snap.CaptureID.String()
	}
	return resp
}

// SetTargetActive pauses or resumes the render target
func (s *CaptureService) SetTargetActive(active bool) error {
	sw, ok := s.target.(activeSwitch)
	if !ok {
		return shared.NewDomainError("UNSUPPORTED", "Render target cannot be paused")
	}
	sw.SetActive(active)
	s.logger.Info("render target toggled", zap.Bool("active", active))
	return nil
}

// TargetActive reports whether the render target can render
func (s *CaptureService) TargetActive() bool {
	return s.target.IsActive()
}

// =============================================================================
// Settings Operations
// =============================================================================

// Settings returns the current capture settings
func (s *CaptureService) Settings() SettingsInput {
	return SettingsInputFromConfig(s.settings.Current())
}

// UpdateSettings replaces the capture settings. A running capture keeps the
// settings it was requested with.
func (s *CaptureService) UpdateSettings(in SettingsInput) (SettingsInput, error) {
	cfg, err := s.settings.Update(in)
	if err != nil {
		return SettingsInput{}, err
	}
	s.logger.Info("capture settings updated",
		zap.String("paper_size", cfg.PaperSize.String()),
		zap.Bool("swap", cfg.Swap),
		zap.Float64("dpi", cfg.DPI),
		zap.Float64("dpi_to_ppi_ratio", cfg.DPIToPPIRatio),
		zap.Int64("maximum_pixels", cfg.MaximumPixels))
	return SettingsInputFromConfig(cfg), nil
}

// Resolve computes the resolution of a settings candidate without storing it.
// A candidate over the pixel budget is not an error; WithinBudget is false.
func (s *CaptureService) Resolve(in ResolutionRequest) (*ResolutionResponse, error) {
	cfg, err := s.settings.Validate(in)
	if err != nil {
		return nil, err
	}

	res, err := capture.Resolve(cfg)
	var budgetErr *capture.PixelBudgetError
	switch {
	case errors.As(err, &budgetErr):
		res = budgetErr.Resolution
	case err != nil:
		return nil, err
	}

	return &ResolutionResponse{
		Width:         res.Width,
		Height:        res.Height,
		Pixels:        res.Area(),
		MaximumPixels: cfg.MaximumPixels,
		WithinBudget:  budgetErr == nil,
	}, nil
}

// PaperSizes returns all available paper sizes
func (s *CaptureService) PaperSizes() []PaperSizeResponse {
	sizes := capture.AllPaperSizes()
	result := make([]PaperSizeResponse, len(sizes))
	for i, ps := range sizes {
		w, h, _ := ps.Dimensions()
		result[i] = PaperSizeResponse{
			Code:     ps.String(),
			WidthMM:  w,
			HeightMM: h,
			Custom:   ps.IsCustom(),
		}
	}
	return result
}

// =============================================================================
// History and Files
// =============================================================================

// History returns the most recent captures, newest first
func (s *CaptureService) History(ctx context.Context, req HistoryRequest) ([]HistoryEntryResponse, error) {
	if s.history == nil {
		return []HistoryEntryResponse{}, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.history.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list capture history: %w", err)
	}
	result := make([]HistoryEntryResponse, len(records))
	for i := range records {
		result[i] = toHistoryEntryResponse(&records[i])
	}
	return result, nil
}

// OpenFile opens a saved capture by file name
func (s *CaptureService) OpenFile(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, name)
}

// =============================================================================
// Helper Functions
// =============================================================================

func toResultResponse(r *Result) *ResultResponse {
	if r == nil {
		return nil
	}
	resp := &ResultResponse{
		ID:         r.ID.String(),
		Stage:      r.Stage.String(),
		ErrorCode:  r.ErrorCode,
		Status:     r.Status,
		Width:      r.Resolution.Width,
		Height:     r.Resolution.Height,
		FileName:   r.FileName,
		Location:   r.Location,
		Bytes:      r.Bytes,
		DurationMS: r.Duration().Milliseconds(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if r.FailedAt != "" {
		resp.FailedAt = r.FailedAt.String()
	}
	return resp
}

func toHistoryEntryResponse(r *capture.CaptureRecord) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:            r.ID.String(),
		Stage:         r.Stage.String(),
		PaperSize:     r.PaperSize.String(),
		Swap:          r.Swap,
		DPI:           r.DPI,
		DPIToPPIRatio: r.DPIToPPIRatio,
		Width:         r.Width,
		Height:        r.Height,
		FileName:      r.FileName,
		Location:      r.Location,
		ErrorCode:     r.ErrorCode,
		Status:        r.Status,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
	}
}
