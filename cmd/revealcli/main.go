package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"time"

	"multiverse-identity/backend/internal/models"
	"multiverse-identity/backend/internal/ws"

	"github.com/gorilla/websocket"
)

type frame struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8081/ws/reveal", "Reveal WebSocket endpoint")
	name := flag.String("name", "", "Your name")
	traits := flag.String("traits", "", "Optional personality traits")
	timeout := flag.Duration("timeout", 30*time.Second, "Give up after this long")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Usage: revealcli -name \"Jane Doe\" [-traits \"curious, brave\"] [-url ws://host/ws/reveal]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	req := models.GenerateRequest{Name: *name, Traits: *traits}
	if err := reveal(ctx, *serverURL, req, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "reveal failed: %v\n", err)
		os.Exit(1)
	}
}

// reveal asks the server for a run and prints each persona as it arrives
func reveal(ctx context.Context, endpoint string, req models.GenerateRequest, out io.Writer) error {
	if _, err := url.Parse(endpoint); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Unblock ReadJSON when ctx ends
	go func() {
		<-ctx.Done()
		conn.SetReadDeadline(time.Now())
	}()

	if err := conn.WriteJSON(ws.Message{Type: ws.TypeGenerate, Content: req}); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		switch f.Type {
		case ws.TypePersona:
			var content ws.PersonaContent
			if err := json.Unmarshal(f.Content, &content); err != nil {
				return fmt.Errorf("decode persona: %w", err)
			}
			printPersona(out, content.Persona)

		case ws.TypeDone:
			var content ws.DoneContent
			if err := json.Unmarshal(f.Content, &content); err != nil {
				return fmt.Errorf("decode done: %w", err)
			}
			fmt.Fprintf(out, "Revealed %d personas (run %s)\n", content.Count, content.RunID)
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil

		case ws.TypeError:
			var content ws.ErrorContent
			if err := json.Unmarshal(f.Content, &content); err != nil {
				return fmt.Errorf("decode error: %w", err)
			}
			return errors.New(content.Code + ": " + content.Message)
		}
	}
}

func printPersona(out io.Writer, p models.Persona) {
	fmt.Fprintf(out, "== %s ==\n%s\n%s\n\n%s\n\n", p.Universe, p.Name, p.Description, p.Backstory)
}
