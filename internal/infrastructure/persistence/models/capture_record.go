// Package models holds the gorm models backing the capture history.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
)

// CaptureRecordModel is the GORM model for the capture_records table
type CaptureRecordModel struct {
	ID            uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Stage         string    `gorm:"type:varchar(32);not null;index"`
	PaperSize     string    `gorm:"column:paper_size;type:varchar(16);not null"`
	Swap          bool      `gorm:"not null;default:false"`
	DPI           float64   `gorm:"column:dpi;not null"`
	DPIToPPIRatio float64   `gorm:"column:dpi_to_ppi_ratio;not null"`
	Width         int       `gorm:"not null;default:0"`
	Height        int       `gorm:"not null;default:0"`
	FileName      string    `gorm:"column:file_name;type:varchar(255)"`
	Location      string    `gorm:"type:text"`
	ErrorCode     string    `gorm:"column:error_code;type:varchar(32);index"`
	Status        string    `gorm:"type:text"`
	StartedAt     time.Time `gorm:"column:started_at;not null;index"`
	FinishedAt    time.Time `gorm:"column:finished_at;not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for CaptureRecordModel
func (CaptureRecordModel) TableName() string {
	return "capture_records"
}

// ToDomain converts the model to a domain record
func (m *CaptureRecordModel) ToDomain() *capture.CaptureRecord {
	return &capture.CaptureRecord{
		ID:            m.ID,
		Stage:         capture.Stage(m.Stage),
		PaperSize:     capture.PaperSize(m.PaperSize),
		Swap:          m.Swap,
		DPI:           m.DPI,
		DPIToPPIRatio: m.DPIToPPIRatio,
		Width:         m.Width,
		Height:        m.Height,
		FileName:      m.FileName,
		Location:      m.Location,
		ErrorCode:     m.ErrorCode,
		Status:        m.Status,
		StartedAt:     m.StartedAt,
		FinishedAt:    m.FinishedAt,
	}
}

// CaptureRecordModelFromDomain creates a model from a domain record
func CaptureRecordModelFromDomain(r *capture.CaptureRecord) *CaptureRecordModel {
	return &CaptureRecordModel{
		ID:            r.ID,
		Stage:         string(r.Stage),
		PaperSize:     string(r.PaperSize),
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
