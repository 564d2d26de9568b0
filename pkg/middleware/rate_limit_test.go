package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/malikarslanasif131/hackathon-backend/pkg/metrics"
)

func newLimitedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func doGet(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := newLimitedRouter(rl.Middleware())

	rejectedBefore := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))

	require.Equal(t, http.StatusOK, doGet(r, "10.0.0.1").Code)
	require.Equal(t, http.StatusOK, doGet(r, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(r, "10.0.0.1").Code)

	rejectedAfter := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))
	require.Equal(t, rejectedBefore+1, rejectedAfter)
}

func TestRateLimiterKeysByClient(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	r := newLimitedRouter(rl.Middleware())

	require.Equal(t, http.StatusOK, doGet(r, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(r, "10.0.0.1").Code)
	require.Equal(t, http.StatusOK, doGet(r, "10.0.0.2").Code)
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(50, 1)
	r := newLimitedRouter(rl.Middleware())

	require.Equal(t, http.StatusOK, doGet(r, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(r, "10.0.0.1").Code)
	time.Sleep(40 * time.Millisecond)
	require.Equal(t, http.StatusOK, doGet(r, "10.0.0.1").Code)
}
