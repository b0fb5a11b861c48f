package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "multiverse-identity/backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaPath = "../../api/openapi.yaml"

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := NewOpenAPIValidator(schemaPath)
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(apperrors.ErrorHandler())
	engine.Use(v.Middleware())
	engine.POST("/api/v1/personas", func(c *gin.Context) { c.Status(http.StatusCreated) })
	engine.GET("/internal/debug", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return engine
}

func post(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	engine := newEngine(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid request", `{"name":"Jane Doe","traits":"curious"}`, http.StatusCreated},
		{"name not a string", `{"name":42}`, http.StatusBadRequest},
		{"traits not a string", `{"name":"Jane","traits":["brave"]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(engine, "/api/v1/personas", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusBadRequest {
				assert.Contains(t, w.Body.String(), apperrors.CodeInvalidRequest)
			}
		})
	}
}

func TestMiddlewareIgnoresUndescribedRoutes(t *testing.T) {
	engine := newEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/internal/debug", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestNewOpenAPIValidatorMissingFile(t *testing.T) {
	_, err := NewOpenAPIValidator("does-not-exist.yaml")
	assert.Error(t, err)
}
