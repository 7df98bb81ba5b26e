package router

import (
	"github.com/gin-gonic/gin"

	"github.com/chitosepg/cameracapture/internal/interfaces/http/handler"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/middleware"
)

// CaptureRoutes mounts the capture API at /capture.
// limiter guards POST /capture only; nil disables rate limiting.
func CaptureRoutes(
	captureHandler *handler.CaptureHandler,
	settingsHandler *handler.SettingsHandler,
	limiter *middleware.RateLimiter,
) *DomainGroup {
	request := []gin.HandlerFunc{captureHandler.RequestCapture}
	if limiter != nil {
		request = append([]gin.HandlerFunc{middleware.RateLimit(limiter)}, request...)
	}

	return NewDomainGroup("capture", "/capture").
		POST("", request...).
		POST("/cancel", captureHandler.Cancel).
		GET("/status", captureHandler.Status).
		GET("/history", captureHandler.History).
		GET("/files/:name", captureHandler.DownloadFile).
		GET("/target", captureHandler.TargetState).
		PUT("/target", captureHandler.SetTargetState).
		GET("/settings", settingsHandler.Get).
		PUT("/settings", settingsHandler.Update).
		POST("/resolve", settingsHandler.Resolve).
		GET("/paper-sizes", settingsHandler.PaperSizes)
}

// SystemRoutes mounts ping and info at /system
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/ping", h.Ping).
		GET("/info", h.GetSystemInfo)
}

// HealthRoutes mounts /health and /healthz. Register it with RegisterRoot.
func HealthRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("health", "").
		GET("/health", h.Health).
		GET("/healthz", h.Health)
}
