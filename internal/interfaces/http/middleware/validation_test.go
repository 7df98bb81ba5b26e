package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chitosepg/cameracapture/internal/interfaces/http/dto"
)

type historyQuery struct {
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Sort  string `json:"sort" binding:"required,oneof=asc desc"`
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	router := gin.New()
	var resp dto.Response
	router.POST("/history", func(c *gin.Context) {
		var q historyQuery
		err := c.ShouldBindJSON(&q)
		require.Error(t, err)
		resp = FormatValidationErrors(err, "req-7")
		HandleValidationError(c, err)
	})

	w := serve(router, httptest.NewRequest(http.MethodPost, "/history", strings.NewReader(`{"sort":"random"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-7", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "sort", resp.Error.Details[0].Field)
	assert.Equal(t, "Must be one of: asc desc", resp.Error.Details[0].Message)
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "")
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
