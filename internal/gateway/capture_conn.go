package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/streamplay/internal/audio"
	"github.com/eleven-am/streamplay/internal/shared"
	"github.com/gorilla/websocket"
)

const captureBufferSize = 64

// CaptureConnection carries locally captured microphone PCM. It is a
// playback.CaptureSource: every binary frame becomes one block of samples.
type CaptureConnection struct {
	ws      *websocket.Conn
	id      string
	logger  *slog.Logger
	samples chan []int16
	once    sync.Once
}

func NewCaptureConnection(ws *websocket.Conn, logger *slog.Logger) *CaptureConnection {
	if logger == nil {
		logger = slog.Default()
	}
	id := shared.NewID("cap_")
	return &CaptureConnection{
		ws:      ws,
		id:      id,
		logger:  logger.With("connection_id", id),
		samples: make(chan []int16, captureBufferSize),
	}
}

func (c *CaptureConnection) Samples() <-chan []int16 {
	return c.samples
}

func (c *CaptureConnection) Close() error {
	var err error
	c.once.Do(func() {
		err = c.ws.Close()
	})
	return err
}

// readPump owns the samples channel and closes it on return.
func (c *CaptureConnection) readPump(ctx context.Context) {
	defer func() {
		close(c.samples)
		c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, message, err := c.ws.ReadMessage()
		if err != nil {
			logReadError(c.logger, err)
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		if kind != websocket.BinaryMessage || len(message) < 2 {
			continue
		}

		select {
		case c.samples <- audio.PCMBytesToInt16(message):
		case <-ctx.Done():
			return
		}
	}
}
