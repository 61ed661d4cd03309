// File: internal/ws/client.go
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/appleaww/messenger/internal/auth"
	"github.com/appleaww/messenger/internal/dtos"
	"github.com/appleaww/messenger/internal/services"
)

// Inbound frame types a client may send after the handshake.
const (
	FrameChatSend   = "chat.send"
	FrameChatRead   = "chat.read"
	FrameChatTyping = "chat.typing"
)

// QueueErrors is where rejected actions are reported back to the acting
// session. The connection stays open; the error is terminal only for the
// single action that raised it.
const QueueErrors = "/queue/errors"

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	egressBuffer   = 256
)

// Frame is the inbound action envelope.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RelayService is the set of relay actions a connection can trigger.
type RelayService interface {
	Send(ctx context.Context, chatID uint, content string, sender *auth.Principal) (*dtos.MessageCreated, error)
	MarkRead(ctx context.Context, chatID uint, messageIDs []uint, reader *auth.Principal) (*dtos.ReadReceiptApplied, error)
	Typing(ctx context.Context, chatID uint, isTyping bool, typist *auth.Principal) (*dtos.TypingState, error)
}

// Client is one live connection with its attached Principal. The read pump
// turns inbound frames into relay calls; the write pump drains the egress
// buffer back to the socket. Separating the two avoids head-of-line blocking
// when a browser is slow.
type Client struct {
	sessionID string
	principal *auth.Principal
	conn      *websocket.Conn
	egress    chan []byte
	done      chan struct{}
	closeOnce sync.Once

	relay  RelayService
	logger services.Logger
}

func newClient(sessionID string, conn *websocket.Conn, principal *auth.Principal, relay RelayService, logger services.Logger) *Client {
	return &Client{
		sessionID: sessionID,
		principal: principal,
		conn:      conn,
		egress:    make(chan []byte, egressBuffer),
		done:      make(chan struct{}),
		relay:     relay,
		logger:    logger,
	}
}

// Principal returns the identity bound to this connection at handshake time.
func (c *Client) Principal() *auth.Principal {
	return c.principal
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump consumes frames until the connection drops. onClose runs exactly
// once afterwards, whatever caused the exit.
func (c *Client) readPump(onClose func()) {
	defer func() {
		onClose()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected connection close", "user_id", c.principal.UserID, "session_id", c.sessionID, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.reportError("malformed frame")
			continue
		}
		c.handleFrame(frame)
	}
}

// handleFrame dispatches one action. Actions run on a background context on
// purpose: a connection closing mid-operation must not cancel work already
// past its authorization check.
func (c *Client) handleFrame(frame Frame) {
	ctx := context.Background()

	switch frame.Type {
	case FrameChatSend:
		var req dtos.MessageSend
		if err := json.Unmarshal(frame.Payload, &req); err != nil {
			c.reportError("malformed payload")
			return
		}
		if _, err := c.relay.Send(ctx, req.ChatID, req.Content, c.principal); err != nil {
			c.logger.Warn("send rejected", "user_id", c.principal.UserID, "chat_id", req.ChatID, "error", err)
			c.reportError(err.Error())
		}

	case FrameChatRead:
		var req dtos.ReadReceipt
		if err := json.Unmarshal(frame.Payload, &req); err != nil {
			c.reportError("malformed payload")
			return
		}
		if _, err := c.relay.MarkRead(ctx, req.ChatID, req.MessageIDs, c.principal); err != nil {
			c.logger.Warn("read receipt rejected", "user_id", c.principal.UserID, "chat_id", req.ChatID, "error", err)
			c.reportError(err.Error())
		}

	case FrameChatTyping:
		var req dtos.Typing
		if err := json.Unmarshal(frame.Payload, &req); err != nil {
			c.reportError("malformed payload")
			return
		}
		if _, err := c.relay.Typing(ctx, req.ChatID, req.IsTyping, c.principal); err != nil {
			c.logger.Warn("typing rejected", "user_id", c.principal.UserID, "chat_id", req.ChatID, "error", err)
			c.reportError(err.Error())
		}

	default:
		c.reportError("unknown frame type: " + frame.Type)
	}
}

// reportError delivers a rejection to this session only.
func (c *Client) reportError(message string) {
	data, err := json.Marshal(Envelope{Destination: QueueErrors, Payload: map[string]string{"error": message}})
	if err != nil {
		return
	}
	select {
	case c.egress <- data:
	case <-c.done:
	default:
	}
}

// writePump drains the egress buffer to the socket and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.egress:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
