package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level string) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.Output = buf
	return New(cfg), buf
}

func TestLoggerLevels(t *testing.T) {
	l, buf := newBufferLogger("warn")

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogErrorAddsErrorField(t *testing.T) {
	l, buf := newBufferLogger("info")

	l.WithRunID("run-1").LogError(errors.New("boom"), "save failed", "theme", "Noir")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "Noir", entry["theme"])
}

func TestContextRoundTrip(t *testing.T) {
	l, _ := newBufferLogger("info")
	ctx := NewContext(context.Background(), l)

	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestMiddlewareSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, buf := newBufferLogger("info")

	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/ping", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("inside handler")
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, `"request_id":"req-123"`)
	}
	assert.Contains(t, lines[1], "request completed")
}

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, _ := newBufferLogger("info")

	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/ping", func(c *gin.Context) {
		assert.NotSame(t, GetGlobal(), FromGin(c))
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}
