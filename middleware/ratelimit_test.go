package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/payments/process", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func post(router *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodPost, "/payments/process", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	// 1 req/sec, burst 2
	router := limitedRouter(NewRateLimiter(1, 2))

	assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, post(router, "10.0.0.1:1234"), "Exceeded burst")

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, post(router, "10.0.0.2:1234"))
}

func TestRateLimiter_RejectBody(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, 1))
	post(router, "10.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/payments/process", nil)
	req.RemoteAddr = "10.0.0.1:1"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"error":{"code":"RATE_LIMITED","message":"Too many requests, slow down"}}`, w.Body.String())
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	clock := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.limiterFor("10.0.0.1")
	rl.limiterFor("10.0.0.2")
	assert.Equal(t, 2, rl.Visitors())

	clock = clock.Add(2 * time.Minute)
	rl.limiterFor("10.0.0.2")

	clock = clock.Add(2 * time.Minute)
	rl.evict()
	assert.Equal(t, 1, rl.Visitors())
}

func TestRateLimiter_RunStopsWithContext(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.Run(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
