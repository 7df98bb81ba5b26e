package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/chitosepg/cameracapture/internal/infrastructure/persistence/models"
)

// Migrate creates or updates every table owned by this package
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.CaptureRecordModel{})
}

// GormCaptureRecordRepository implements CaptureRecordRepository using GORM
type GormCaptureRecordRepository struct {
	db *gorm.DB
}

// NewGormCaptureRecordRepository creates a new GormCaptureRecordRepository
func NewGormCaptureRecordRepository(db *gorm.DB) *GormCaptureRecordRepository {
	return &GormCaptureRecordRepository{db: db}
}

// Save inserts a record, replacing any existing row with the same ID
func (r *GormCaptureRecordRepository) Save(ctx context.Context, record *capture.CaptureRecord) error {
	model := models.CaptureRecordModelFromDomain(record)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByID finds a record by ID
func (r *GormCaptureRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*capture.CaptureRecord, error) {
	var model models.CaptureRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecent returns up to limit records, newest first
func (r *GormCaptureRecordRepository) FindRecent(ctx context.Context, limit int) ([]capture.CaptureRecord, error) {
	var recordModels []models.CaptureRecordModel
	query := r.db.WithContext(ctx).Order("started_at DESC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]capture.CaptureRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// Ensure GormCaptureRecordRepository implements CaptureRecordRepository
var _ capture.CaptureRecordRepository = (*GormCaptureRecordRepository)(nil)
