package ws

import (
	"encoding/json"

	"multiverse-identity/backend/internal/models"
)

// Message types exchanged on /ws/reveal
const (
	TypeGenerate = "generate"
	TypePing     = "ping"
	TypePong     = "pong"
	TypePersona  = "persona"
	TypeDone     = "done"
	TypeError    = "error"
)

// Message is the envelope of every frame sent to the client
type Message struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content,omitempty"`
}

// inbound is a frame received from the client; Content is decoded per type
type inbound struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// PersonaContent is the body of a persona frame
type PersonaContent struct {
	RunID   string         `json:"run_id"`
	Persona models.Persona `json:"persona"`
}

// DoneContent closes a reveal
type DoneContent struct {
	RunID string `json:"run_id"`
	Count int    `json:"count"`
}

// ErrorContent carries the same code and message as the HTTP error body
type ErrorContent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
