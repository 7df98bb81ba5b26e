package capture

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CaptureRecord is the history entry kept for every finished capture
type CaptureRecord struct {
	ID            uuid.UUID
	Stage         Stage
	PaperSize     PaperSize
	Swap          bool
	DPI           float64
	DPIToPPIRatio float64
	Width         int
	Height        int
	FileName      string
	Location      string
	ErrorCode     string
	Status        string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// NewCaptureRecord builds a history entry from a finished capture
func NewCaptureRecord(s *CaptureState) *CaptureRecord {
	finished := s.StartedAt
	if s.FinishedAt != nil {
		finished = *s.FinishedAt
	}
	return &CaptureRecord{
		ID:            s.ID,
		Stage:         s.Stage,
		PaperSize:     s.Config.PaperSize,
		Swap:          s.Config.Swap,
		DPI:           s.Config.DPI,
		DPIToPPIRatio: s.Config.DPIToPPIRatio,
		Width:         s.Resolution.Width,
		Height:        s.Resolution.Height,
		FileName:      s.FileName,
		Location:      s.Location,
		ErrorCode:     s.ErrorCode,
		Status:        s.Status,
		StartedAt:     s.StartedAt,
		FinishedAt:    finished,
	}
}

// CaptureRecordRepository stores the capture history
type CaptureRecordRepository interface {
	// Save inserts or replaces a record
	Save(ctx context.Context, record *CaptureRecord) error
	// FindByID returns shared.ErrNotFound when no record exists
	FindByID(ctx context.Context, id uuid.UUID) (*CaptureRecord, error)
	// FindRecent returns the newest records first
	FindRecent(ctx context.Context, limit int) ([]CaptureRecord, error)
}
