package capture

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// SettingsInput is an edit of the capture settings
type SettingsInput struct {
	PaperSize     string  `json:"paper_size" validate:"required,oneof=A0 A1 A2 A3 A4 A5 B0 B1 B2 B3 B4 B5 CUSTOM"`
	PaperWidthMM  float64 `json:"paper_width_mm" validate:"omitempty,gte=1,lte=2000"`
	PaperHeightMM float64 `json:"paper_height_mm" validate:"omitempty,gte=1,lte=2000"`
	Swap          bool    `json:"swap"`
	DPI           float64 `json:"dpi" validate:"gte=1,lte=2000"`
	DPIToPPIRatio float64 `json:"dpi_to_ppi_ratio" validate:"gte=1,lte=16"`
	MaximumPixels int64   `json:"maximum_pixels" validate:"gt=0"`
}

// ToConfig converts the input to a domain configuration
func (in SettingsInput) ToConfig() capture.CaptureConfig {
	return capture.CaptureConfig{
		PaperSize:     capture.PaperSize(strings.ToUpper(in.PaperSize)),
		PaperWidthMM:  in.PaperWidthMM,
		PaperHeightMM: in.PaperHeightMM,
		Swap:          in.Swap,
		DPI:           in.DPI,
		DPIToPPIRatio: in.DPIToPPIRatio,
		MaximumPixels: in.MaximumPixels,
	}
}

// SettingsInputFromConfig is the inverse of ToConfig
func SettingsInputFromConfig(cfg capture.CaptureConfig) SettingsInput {
	return SettingsInput{
		PaperSize:     cfg.PaperSize.String(),
		PaperWidthMM:  cfg.PaperWidthMM,
		PaperHeightMM: cfg.PaperHeightMM,
		Swap:          cfg.Swap,
		DPI:           cfg.DPI,
		DPIToPPIRatio: cfg.DPIToPPIRatio,
		MaximumPixels: cfg.MaximumPixels,
	}
}

// SettingsStore holds the editable capture settings. Captures take a copy
// when they are requested, so edits never affect a run in flight.
// Safe for concurrent use.
type SettingsStore struct {
	mu       sync.RWMutex
	current  capture.CaptureConfig
	validate *validator.Validate
}

// NewSettingsStore creates a store holding initial, which must be valid
func NewSettingsStore(initial capture.CaptureConfig) (*SettingsStore, error) {
	s := &SettingsStore{validate: validator.New(validator.WithRequiredStructEnabled())}
	if err := s.check(SettingsInputFromConfig(initial)); err != nil {
		return nil, err
	}
	s.current = initial
	return s, nil
}

// Current returns a copy of the current settings
func (s *SettingsStore) Current() capture.CaptureConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates and replaces the settings. Invalid settings are rejected
// with an INVALID_CONFIG error and leave the store unchanged.
func (s *SettingsStore) Update(in SettingsInput) (capture.CaptureConfig, error) {
	cfg, err := s.Validate(in)
	if err != nil {
		return capture.CaptureConfig{}, err
	}

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg, nil
}

// Validate checks in without storing it and returns the configuration it describes
func (s *SettingsStore) Validate(in SettingsInput) (capture.CaptureConfig, error) {
	in.PaperSize = strings.ToUpper(strings.TrimSpace(in.PaperSize))
	if err := s.check(in); err != nil {
		return capture.CaptureConfig{}, err
	}
	return in.ToConfig(), nil
}

func (s *SettingsStore) check(in SettingsInput) error {
	if err := s.validate.Struct(in); err != nil {
		return shared.NewDomainError(capture.CodeInvalidConfig, describeValidation(err))
	}
	return in.ToConfig().Validate()
}

// describeValidation flattens validator errors into one message
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return "Invalid settings: " + strings.Join(parts, "; ")
}
