package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func labelsOf(ctx context.Context) map[string]string {
	labels := map[string]string{}
	pprof.ForLabels(ctx, func(key, value string) bool {
		labels[key] = value
		return true
	})
	return labels
}

func TestProfiling_TagsRoute(t *testing.T) {
	var labels map[string]string
	router := gin.New()
	router.Use(Profiling(true))
	router.POST("/api/v1/capture", func(c *gin.Context) {
		labels = labelsOf(c.Request.Context())
		c.Status(http.StatusAccepted)
	})

	w := serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/capture", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "/api/v1/capture", labels["route"])
	assert.Equal(t, "POST", labels["method"])
}

func TestProfiling_Disabled(t *testing.T) {
	var labels map[string]string
	router := gin.New()
	router.Use(Profiling(false))
	router.GET("/api/v1/capture/status", func(c *gin.Context) {
		labels = labelsOf(c.Request.Context())
		c.Status(http.StatusOK)
	})

	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/capture/status", nil))
	assert.Empty(t, labels)
}
