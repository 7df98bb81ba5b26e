package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
	"github.com/chitosepg/cameracapture/internal/infrastructure/logger"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/dto"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/middleware"
)

// CaptureHandler serves capture requests, status, history and saved files
type CaptureHandler struct {
	BaseHandler
	service *captureapp.CaptureService
}

// NewCaptureHandler creates a new CaptureHandler
func NewCaptureHandler(service *captureapp.CaptureService) *CaptureHandler {
	return &CaptureHandler{service: service}
}

// RequestCapture starts a capture.
// 202 with the capture ID, or 409 when a capture is already running.
//
//	POST /capture
func (h *CaptureHandler) RequestCapture(c *gin.Context) {
	resp, err := h.service.RequestCapture(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !resp.Accepted {
		h.ErrorWithCode(c, dto.ErrCodeCaptureInProgress, "A capture is already in progress")
		return
	}

	ctx, _ := logger.WithCaptureID(c.Request.Context(), logger.FromContext(c.Request.Context()), resp.CaptureID)
	logger.L(ctx).Info("capture requested")
	h.Accepted(c, resp)
}

// Cancel aborts the running capture.
//
//	POST /capture/cancel
func (h *CaptureHandler) Cancel(c *gin.Context) {
	cancelled, err := h.service.Cancel(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !cancelled {
		h.ErrorWithCode(c, dto.ErrCodeConflict, "No capture is running")
		return
	}
	h.Success(c, gin.H{"cancelled": true})
}

// Status returns the current stage and status text.
//
//	GET /capture/status
func (h *CaptureHandler) Status(c *gin.Context) {
	h.Success(c, h.service.Status())
}

// History lists recent captures, newest first.
//
//	GET /capture/history?limit=20
func (h *CaptureHandler) History(c *gin.Context) {
	var req captureapp.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entries, err := h.service.History(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// DownloadFile streams a saved capture.
//
//	GET /capture/files/:name
func (h *CaptureHandler) DownloadFile(c *gin.Context) {
	name := c.Param("name")
	rc, err := h.service.OpenFile(c.Request.Context(), name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			logger.L(c.Request.Context()).Warn("failed to close capture file",
				zap.String("file_name", name), zap.Error(cerr))
		}
	}()

	c.DataFromReader(http.StatusOK, -1, "image/png", rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + name + `"`,
	})
}

// TargetState reports whether the render target is active.
//
//	GET /capture/target
func (h *CaptureHandler) TargetState(c *gin.Context) {
	h.Success(c, gin.H{"active": h.service.TargetActive()})
}

// SetTargetState pauses or resumes the render target.
//
//	PUT /capture/target
func (h *CaptureHandler) SetTargetState(c *gin.Context) {
	var req captureapp.TargetStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if err := h.service.SetTargetActive(*req.Active); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"active": h.service.TargetActive()})
}
