package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/streamplay/internal/shared"
	"github.com/eleven-am/streamplay/internal/transport"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 20 // ~131s of 16kHz mono PCM per frame
	sendBufferSize = 256
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamConnection is the socket of the speech server feeding audio. Binary
// frames are PCM chunks, text frames are control actions, and outbound
// control messages are written as JSON text frames.
type StreamConnection struct {
	ws     *websocket.Conn
	id     string
	logger *slog.Logger
	send   chan *transport.ControlMessage
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewStreamConnection(ws *websocket.Conn, logger *slog.Logger) *StreamConnection {
	if logger == nil {
		logger = slog.Default()
	}
	id := shared.NewID("conn_")
	return &StreamConnection{
		ws:     ws,
		id:     id,
		logger: logger.With("connection_id", id),
		send:   make(chan *transport.ControlMessage, sendBufferSize),
		done:   make(chan struct{}),
	}
}

func (c *StreamConnection) ID() string {
	return c.id
}

func (c *StreamConnection) Send(_ context.Context, msg *transport.ControlMessage) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return shared.ErrClosed
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("send buffer full, dropping message", "action", msg.Header.Action)
		return nil
	}
}

func (c *StreamConnection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	close(c.send)
	c.mu.Unlock()

	return c.ws.Close()
}

func (c *StreamConnection) readPump(ctx context.Context, player Player) {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		kind, message, err := c.ws.ReadMessage()
		if err != nil {
			logReadError(c.logger, err)
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		switch kind {
		case websocket.BinaryMessage:
			player.Enqueue(message)
		case websocket.TextMessage:
			c.handleControl(player, message)
		}
	}
}

// logReadError reports why a read pump stopped. Oversized frames close the
// socket with 1009, which would otherwise go unlogged.
func logReadError(logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		logger.Warn("frame exceeds read limit, closing connection", "limit_bytes", maxMessageSize)
	case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
		logger.Error("websocket read error", "error", err)
	}
}

func (c *StreamConnection) handleControl(player Player, message []byte) {
	action := parseAction(message)

	switch action {
	case transport.ActionInterrupt:
		discarded := player.Interrupt()
		c.logger.Info("interrupt requested", "discarded", discarded)
	case transport.ActionClear:
		if err := player.Clear(); err != nil {
			c.logger.Error("failed to clear playback", "error", err)
		}
	default:
		c.logger.Warn("unknown control action", "action", action)
	}
}

// parseAction accepts either a bare action name or a JSON control message.
func parseAction(message []byte) transport.Action {
	trimmed := strings.TrimSpace(string(message))
	if strings.HasPrefix(trimmed, "{") {
		msg, err := transport.ParseControlMessage([]byte(trimmed))
		if err != nil {
			return ""
		}
		return msg.Header.Action
	}
	return transport.Action(trimmed)
}

func (c *StreamConnection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				c.logger.Error("failed to marshal message", "error", err)
				continue
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
