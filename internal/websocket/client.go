package websocket

import (
	"context"
	"encoding/json"
	"time"

	"shate-rag-be/internal/dto"
	"shate-rag-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192

	// questions waiting behind the one being answered
	pendingQuestions = 4
)

// Frame is one JSON message on the socket.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

const (
	FrameAnswer = "answer"
	FrameError  = "error"
	FrameFeed   = "chat_answered"
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	// SessionID identifies this connection only.
	SessionID uuid.UUID

	// Monitor clients receive the live feed and never ask questions.
	Monitor bool

	// Buffered channel of outbound messages.
	Send chan []byte
}

// readPump keeps reading (and handling pongs) while questions are answered on a separate
// goroutine, so a long answer cannot outlive the read deadline.
func (c *Client) readPump(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	questions := make(chan []byte, pendingQuestions)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.serve(ctx, questions)
	}()

	defer func() {
		cancel()
		close(questions)
		<-done
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WS", "Unexpected close", map[string]interface{}{
					"session_id": c.SessionID.String(),
					"error":      err.Error(),
				})
			}
			return
		}
		if c.Monitor {
			continue
		}
		c.enqueue(questions, raw)
	}
}

// enqueue hands a question to the answer goroutine, or rejects it when too many are pending.
func (c *Client) enqueue(questions chan<- []byte, raw []byte) {
	select {
	case questions <- raw:
	default:
		c.push(Frame{Type: FrameError, Data: "too many pending questions, please wait for the current answer"})
	}
}

// serve answers questions one at a time until the channel is closed.
func (c *Client) serve(ctx context.Context, questions <-chan []byte) {
	for raw := range questions {
		c.push(c.Hub.answer(ctx, raw))
	}
}

func (c *Client) push(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		c.Hub.logger.Warn("WS", "Client send buffer full, dropping frame", map[string]interface{}{"session_id": c.SessionID.String()})
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// one JSON document per websocket message
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// decodeQuestion parses and validates a question frame.
func decodeQuestion(raw []byte) (*dto.ChatRequest, error) {
	var req dto.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}
