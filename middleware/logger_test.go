package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/soil-analyses/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/soil-analyses/7", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "request handled", entries[0].Message)
	assert.Equal(t, "request rejected", entries[1].Message)

	fields := entries[1].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "/soil-analyses/:id", fields["path"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
}
