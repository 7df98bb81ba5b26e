package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/infrastructure/render"
	"github.com/chitosepg/cameracapture/internal/infrastructure/storage"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/dto"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testConfig resolves to 58x82
func testConfig() capture.CaptureConfig {
	cfg := capture.DefaultCaptureConfig()
	cfg.PaperSize = capture.PaperSizeA5
	cfg.PaperWidthMM = 148
	cfg.PaperHeightMM = 210
	cfg.DPI = 10
	return cfg
}

type testEnv struct {
	service *captureapp.CaptureService
	storage *storage.MemoryStorage
	target  *render.ImageTarget
	router  *gin.Engine
}

// newTestEnv wires a real service over an image target and memory storage.
// With a long interval the loop never ticks, so a requested capture stays
// in VALIDATING.
func newTestEnv(t *testing.T, interval time.Duration) *testEnv {
	t.Helper()

	settings, err := captureapp.NewSettingsStore(testConfig())
	require.NoError(t, err)

	scene := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range scene.Pix {
		scene.Pix[i] = 0x80
	}
	env := &testEnv{
		storage: storage.NewMemoryStorage(),
		target:  render.NewImageTarget(&render.ImageTargetConfig{Scene: scene}),
	}

	session, err := captureapp.NewSession(captureapp.SessionConfig{
		Target:   env.target,
		Storage:  env.storage,
		Settings: settings,
	})
	require.NoError(t, err)

	loop := captureapp.NewLoop(session, interval, nil)
	require.NoError(t, loop.Start(context.Background()))
	t.Cleanup(func() { _ = loop.Stop(context.Background()) })

	env.service = captureapp.NewCaptureService(loop, settings, nil, env.storage, env.target, nil)
	env.router = newTestRouter(env.service)
	return env
}

func newTestRouter(service *captureapp.CaptureService) *gin.Engine {
	middleware.SetupValidator()

	captureHandler := NewCaptureHandler(service)
	settingsHandler := NewSettingsHandler(service)

	router := gin.New()
	router.Use(middleware.RequestID())
	g := router.Group("/api/v1/capture")
	g.POST("", captureHandler.RequestCapture)
	g.POST("/cancel", captureHandler.Cancel)
	g.GET("/status", captureHandler.Status)
	g.GET("/history", captureHandler.History)
	g.GET("/files/:name", captureHandler.DownloadFile)
	g.GET("/target", captureHandler.TargetState)
	g.PUT("/target", captureHandler.SetTargetState)
	g.GET("/settings", settingsHandler.Get)
	g.PUT("/settings", settingsHandler.Update)
	g.POST("/resolve", settingsHandler.Resolve)
	g.GET("/paper-sizes", settingsHandler.PaperSizes)
	return router
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and its data into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *dto.ErrorInfo  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return dto.Response{Success: raw.Success, Error: raw.Error}
}
