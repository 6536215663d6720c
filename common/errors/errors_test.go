package errors_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/Rohit1034/HrudaySparshi/common/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, apperrors.StatusOf(apperrors.NotFound("Order not found")))
	assert.Equal(t, http.StatusForbidden, apperrors.StatusOf(fmt.Errorf("wrapped: %w", apperrors.Forbidden("no"))))
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusOf(fmt.Errorf("boom")))
	assert.True(t, apperrors.IsCode(apperrors.InvalidArgument("bad"), http.StatusBadRequest))
}

func TestErrorMiddlewareSanitizesMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware(zap.NewNop()))
	r.GET("/internal", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("pq: password authentication failed for user admin"))
	})
	r.GET("/wrapped", func(c *gin.Context) {
		_ = c.Error(apperrors.Unavailable("Store unavailable", fmt.Errorf("dial tcp 10.0.0.3:5432")))
	})
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("Order not found"))
	})

	cases := []struct {
		path    string
		code    int
		message string
	}{
		{"/internal", http.StatusInternalServerError, "Internal server error"},
		{"/wrapped", http.StatusServiceUnavailable, "Store unavailable"},
		{"/missing", http.StatusNotFound, "Order not found"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

		require.Equal(t, tc.code, rec.Code, tc.path)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.message, body["error"], tc.path)
		assert.NotContains(t, rec.Body.String(), "10.0.0.3")
		assert.NotContains(t, rec.Body.String(), "password")
	}
}
