package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"multiverse-identity/backend/internal/models"
	apperrors "multiverse-identity/backend/pkg/errors"
	"multiverse-identity/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16 * 1024
)

// Revealer generates a run and paces its personas
type Revealer interface {
	Reveal(ctx context.Context, req models.GenerateRequest, delay time.Duration) (*models.Run, <-chan models.Persona, error)
}

// HubConfig configures the reveal hub
type HubConfig struct {
	RevealDelay    time.Duration
	AllowedOrigins []string
}

// Hub tracks the connected reveal clients
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	revealer   Revealer
	config     HubConfig
	upgrader   websocket.Upgrader
	mu         sync.Mutex
	log        *logger.Logger
}

func NewHub(revealer Revealer, config HubConfig, log *logger.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		revealer:   revealer,
		config:     config,
		log:        log,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.config.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.config.AllowedOrigins, "*") || slices.Contains(h.config.AllowedOrigins, origin)
}

// Run serves registrations until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("Reveal client registered", "client_id", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			h.log.Debug("Reveal client unregistered", "client_id", client.ID)
		}
	}
}

// ActiveConnections returns the number of connected clients
func (h *Hub) ActiveConnections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Client is one WebSocket connection
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub

	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger
}

// ServeWs upgrades the request and starts the client pumps
func (h *Hub) ServeWs(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Error upgrading connection", "error", err.Error())
		return
	}

	clientID := c.Query("clientId")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	client := &Client{
		ID:     clientID,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		Hub:    h,
		ctx:    ctx,
		cancel: cancel,
		log:    h.log.With("client_id", clientID),
	}

	h.register <- client
	client.log.Info("Reveal connection established")

	go client.WritePump()
	go client.ReadPump()
}

func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		c.Hub.unregister <- c
		c.Conn.Close()
		c.log.Debug("ReadPump ended")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("Unexpected close", "error", err.Error())
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(apperrors.NewBadRequestError(apperrors.CodeInvalidRequest, "Message is not valid JSON"))
			continue
		}

		go c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg inbound) {
	switch msg.Type {
	case TypeGenerate:
		c.handleGenerate(msg)
	case TypePing:
		c.sendMessage(TypePong, nil)
	default:
		c.sendError(apperrors.NewBadRequestError(apperrors.CodeInvalidRequest, "Unknown message type: "+msg.Type))
	}
}

func (c *Client) handleGenerate(msg inbound) {
	var req models.GenerateRequest
	if len(msg.Content) > 0 {
		if err := json.Unmarshal(msg.Content, &req); err != nil {
			c.sendError(apperrors.NewBadRequestError(apperrors.CodeInvalidRequest, "Invalid generate content"))
			return
		}
	}

	run, personas, err := c.Hub.revealer.Reveal(c.ctx, req, c.Hub.config.RevealDelay)
	if err != nil {
		c.sendError(err)
		return
	}

	count := 0
	for p := range personas {
		c.sendMessage(TypePersona, PersonaContent{RunID: run.ID, Persona: p})
		count++
	}
	if c.ctx.Err() != nil {
		return
	}
	c.sendMessage(TypeDone, DoneContent{RunID: run.ID, Count: count})
}

func (c *Client) sendMessage(messageType string, content interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Content: content})
	if err != nil {
		c.log.LogError(err, "Error marshaling message")
		return
	}

	select {
	case c.Send <- data:
	case <-c.ctx.Done():
	}
}

func (c *Client) sendError(err error) {
	appErr := apperrors.FromError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		c.log.LogError(err, "Reveal failed")
	}
	c.sendMessage(TypeError, ErrorContent{Code: appErr.Code, Message: appErr.Message})
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.cancel()
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}
