package ws

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"multiverse-identity/backend/internal/models"
	apperrors "multiverse-identity/backend/pkg/errors"
	"multiverse-identity/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRevealer struct{}

func (fakeRevealer) Reveal(_ context.Context, req models.GenerateRequest, _ time.Duration) (*models.Run, <-chan models.Persona, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, nil, apperrors.NameRequired()
	}
	run := &models.Run{ID: "run-1", BaseName: req.Name}
	ch := make(chan models.Persona, 2)
	ch <- models.Persona{Position: 0, Universe: "Sci-Fi", Name: "Neo-" + req.Name}
	ch <- models.Persona{Position: 1, Universe: "Fantasy", Name: "Lord " + req.Name}
	close(ch)
	return run, ch, nil
}

func dial(t *testing.T) (*websocket.Conn, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(fakeRevealer{}, HubConfig{}, logger.New(logger.Config{Level: "error", Output: io.Discard}))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws/reveal", hub.ServeWs)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/reveal"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn, hub
}

type frame struct {
	Type    string         `json:"type"`
	Content map[string]any `json:"content"`
}

func TestRevealOverWebSocket(t *testing.T) {
	conn, hub := dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "generate",
		"content": map[string]string{"name": "Jane", "traits": "brave"},
	}))

	var frames []frame
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		frames = append(frames, f)
		if f.Type == TypeDone {
			break
		}
	}

	require.Len(t, frames, 3)
	assert.Equal(t, TypePersona, frames[0].Type)
	assert.Equal(t, "run-1", frames[0].Content["run_id"])
	persona := frames[0].Content["persona"].(map[string]any)
	assert.Equal(t, "Neo-Jane", persona["name"])
	assert.Equal(t, float64(0), persona["id"])
	assert.Equal(t, float64(2), frames[2].Content["count"])

	assert.Eventually(t, func() bool { return hub.ActiveConnections() == 1 }, time.Second, 10*time.Millisecond)
}

func TestRevealNameRequired(t *testing.T) {
	conn, _ := dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "generate", "content": map[string]string{"name": "  "}}))

	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, TypeError, f.Type)
	assert.Equal(t, apperrors.CodeNameRequired, f.Content["code"])
}

func TestPingAndUnknownType(t *testing.T) {
	conn, _ := dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, TypePong, f.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, TypeError, f.Type)
	assert.Equal(t, apperrors.CodeInvalidRequest, f.Content["code"])
}
