package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimit(16))
	router.PUT("/settings", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("within limit", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"dpi":300}`)))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("content length over limit", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(strings.Repeat("x", 32))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_BAD_REQUEST")
	})

	t.Run("streamed body over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/settings", io.NopCloser(strings.NewReader(strings.Repeat("x", 32))))
		req.ContentLength = -1
		w := serve(router, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
