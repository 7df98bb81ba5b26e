package capture

import (
	"time"
)

// CaptureRequestResponse is the answer to a capture request
type CaptureRequestResponse struct {
	Accepted  bool   `json:"accepted"`
	CaptureID string `json:"capture_id,omitempty"`
	Status    string `json:"status"`
}

// StatusResponse describes the capture loop
type StatusResponse struct {
	Running   bool            `json:"running"`
	CaptureID string          `json:"capture_id,omitempty"`
	Stage     string          `json:"stage"`
	Status    string          `json:"status"`
	Last      *ResultResponse `json:"last,omitempty"`
}

// ResultResponse describes a finished capture
type ResultResponse struct {
	ID         string    `json:"id"`
	Stage      string    `json:"stage"`
	FailedAt   string    `json:"failed_at,omitempty"`
	ErrorCode  string    `json:"error_code,omitempty"`
	Status     string    `json:"status"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	FileName   string    `json:"file_name,omitempty"`
	Location   string    `json:"location,omitempty"`
	Bytes      int       `json:"bytes"`
	DurationMS int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// ResolutionRequest asks for the resolution of a settings candidate
type ResolutionRequest = SettingsInput

// ResolutionResponse is the resolved pixel size of a settings candidate
type ResolutionResponse struct {
	Width         int   `json:"width"`
	Height        int   `json:"height"`
	Pixels        int64 `json:"pixels"`
	MaximumPixels int64 `json:"maximum_pixels"`
	WithinBudget  bool  `json:"within_budget"`
}

// PaperSizeResponse represents a paper size
type PaperSizeResponse struct {
	Code     string `json:"code"`
	WidthMM  int    `json:"width_mm"`
	HeightMM int    `json:"height_mm"`
	Custom   bool   `json:"custom"`
}

// HistoryRequest lists recent captures
type HistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// HistoryEntryResponse is one stored capture record
type HistoryEntryResponse struct {
	ID            string    `json:"id"`
	Stage         string    `json:"stage"`
	PaperSize     string    `json:"paper_size"`
	Swap          bool      `json:"swap"`
	DPI           float64   `json:"dpi"`
	DPIToPPIRatio float64   `json:"dpi_to_ppi_ratio"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	FileName      string    `json:"file_name,omitempty"`
	Location      string    `json:"location,omitempty"`
	ErrorCode     string    `json:"error_code,omitempty"`
	Status        string    `json:"status"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// TargetStateRequest toggles whether the render target is active
type TargetStateRequest struct {
	Active *bool `json:"active" binding:"required"`
}
