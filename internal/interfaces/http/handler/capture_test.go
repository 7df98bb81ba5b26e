package handler

import (
	"bytes"
	"image/png"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/dto"
)

func TestCaptureHandler_CaptureAndDownload(t *testing.T) {
	env := newTestEnv(t, time.Millisecond)

	w := env.do(t, http.MethodPost, "/api/v1/capture", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var accepted captureapp.CaptureRequestResponse
	resp := decode(t, w, &accepted)
	assert.True(t, resp.Success)
	assert.True(t, accepted.Accepted)
	assert.NotEmpty(t, accepted.CaptureID)

	var status captureapp.StatusResponse
	require.Eventually(t, func() bool {
		w := env.do(t, http.MethodGet, "/api/v1/capture/status", nil)
		decode(t, w, &status)
		return status.Last != nil
	}, 5*time.Second, 5*time.Millisecond)

	assert.Equal(t, "COMPLETED", status.Last.Stage)
	assert.Equal(t, accepted.CaptureID, status.Last.ID)
	assert.Equal(t, 58, status.Last.Width)
	assert.Equal(t, 82, status.Last.Height)
	assert.Regexp(t, `^Saved-\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.png$`, status.Last.FileName)

	w = env.do(t, http.MethodGet, "/api/v1/capture/files/"+status.Last.FileName, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), status.Last.FileName)

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 58, img.Bounds().Dx())
	assert.Equal(t, 82, img.Bounds().Dy())
}

func TestCaptureHandler_RequestWhileRunning(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	w := env.do(t, http.MethodPost, "/api/v1/capture", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/capture", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeCaptureInProgress, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)

	var status captureapp.StatusResponse
	decode(t, env.do(t, http.MethodGet, "/api/v1/capture/status", nil), &status)
	assert.True(t, status.Running)
	assert.Equal(t, "VALIDATING", status.Stage)
}

func TestCaptureHandler_Cancel(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	w := env.do(t, http.MethodPost, "/api/v1/capture/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	require.Equal(t, http.StatusAccepted, env.do(t, http.MethodPost, "/api/v1/capture", nil).Code)

	w = env.do(t, http.MethodPost, "/api/v1/capture/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var status captureapp.StatusResponse
	decode(t, env.do(t, http.MethodGet, "/api/v1/capture/status", nil), &status)
	assert.False(t, status.Running)
	require.NotNil(t, status.Last)
	assert.Equal(t, "CANCELLED", status.Last.ErrorCode)
}

func TestCaptureHandler_DownloadErrors(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantErr  string
	}{
		{"missing", "/api/v1/capture/files/Saved-missing.png", http.StatusNotFound, dto.ErrCodeNotFound},
		{"path element", "/api/v1/capture/files/a%5Cb.png", http.StatusBadRequest, dto.ErrCodeInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantCode, w.Code)
			resp := decode(t, w, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestCaptureHandler_History(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	var entries []captureapp.HistoryEntryResponse
	w := env.do(t, http.MethodGet, "/api/v1/capture/history?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &entries)
	assert.Empty(t, entries)

	w = env.do(t, http.MethodGet, "/api/v1/capture/history?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "limit", resp.Error.Details[0].Field)
}

func TestCaptureHandler_TargetState(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	var state struct {
		Active bool `json:"active"`
	}
	decode(t, env.do(t, http.MethodGet, "/api/v1/capture/target", nil), &state)
	assert.True(t, state.Active)

	w := env.do(t, http.MethodPut, "/api/v1/capture/target", map[string]bool{"active": false})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.False(t, state.Active)
	assert.False(t, env.target.IsActive())

	w = env.do(t, http.MethodPut, "/api/v1/capture/target", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
