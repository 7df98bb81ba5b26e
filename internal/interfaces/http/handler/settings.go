package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/dto"
)

// SettingsHandler edits the capture settings and previews resolutions
type SettingsHandler struct {
	BaseHandler
	service *captureapp.CaptureService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service *captureapp.CaptureService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get returns the current settings.
//
//	GET /capture/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	h.Success(c, h.service.Settings())
}

// Update replaces the settings. Invalid settings leave the current ones in place.
//
//	PUT /capture/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var in captureapp.SettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid settings JSON")
		return
	}

	updated, err := h.service.UpdateSettings(in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// Resolve computes the pixel size of a settings candidate without storing it.
//
//	POST /capture/resolve
func (h *SettingsHandler) Resolve(c *gin.Context) {
	var in captureapp.ResolutionRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid settings JSON")
		return
	}

	resp, err := h.service.Resolve(in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PaperSizes lists the paper sizes and their dimensions in millimetres.
//
//	GET /capture/paper-sizes
func (h *SettingsHandler) PaperSizes(c *gin.Context) {
	h.Success(c, h.service.PaperSizes())
}
