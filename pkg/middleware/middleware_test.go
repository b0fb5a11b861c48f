package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"multiverse-identity/backend/pkg/errors"
	"multiverse-identity/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func quietLogger() *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Output = io.Discard
	return logger.New(cfg)
}

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	opts := DefaultRateLimiterOptions()
	opts.Limit = 0.0001
	opts.Burst = 2
	opts.CleanupInterval = 0
	rl := NewRateLimiter(quietLogger(), opts)
	defer rl.Stop()

	r := gin.New()
	r.Use(errors.ErrorHandler(), rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
			assert.Contains(t, w.Body.String(), errors.CodeRateLimitExceeded)
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterKeysPerClient(t *testing.T) {
	opts := DefaultRateLimiterOptions()
	opts.CleanupInterval = 0
	rl := NewRateLimiter(quietLogger(), opts)

	a := rl.getLimiter("10.0.0.1")
	assert.Same(t, a, rl.getLimiter("10.0.0.1"))
	assert.NotSame(t, a, rl.getLimiter("10.0.0.2"))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	opts := DefaultRateLimiterOptions()
	opts.CleanupInterval = 0
	opts.ExpiryDuration = time.Minute
	rl := NewRateLimiter(quietLogger(), opts)

	rl.getLimiter("idle")
	rl.evictIdle(time.Now().Add(2 * time.Minute))

	assert.Empty(t, rl.clients)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORS([]string{"https://app.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMaxBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(MaxBodySize(8))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("definitely too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTracingRecordsSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(Tracing("multiverse-test"))
	r.GET("/api/v1/runs/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs/abc", nil))

	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	spans := recorder.Ended()
	if assert.Len(t, spans, 1) {
		assert.Equal(t, "GET /api/v1/runs/:id", spans[0].Name())
	}
}
