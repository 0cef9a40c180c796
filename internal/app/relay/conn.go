package relay

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
)

const (
	// timeout for a single write, including control frames.
	writeWait = 10 * time.Second

	// how long the server waits for a pong before treating the peer as gone.
	pongWait = 60 * time.Second

	// ping interval; must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// DefaultSendQueueSize is the outbound queue length per connection.
	DefaultSendQueueSize = 256

	// DefaultMaxFrameBytes is the largest inbound frame accepted.
	DefaultMaxFrameBytes = 8192
)

// ConnOptions tunes a Conn. Zero values select the defaults.
type ConnOptions struct {
	SendQueueSize int
	MaxFrameBytes int64
}

// Conn adapts a gorilla WebSocket connection to Transport.
// Outbound frames go through a bounded queue drained by WritePump, so Send never
// blocks on a slow peer.
type Conn struct {
	id string

	ws *websocket.Conn

	// queued outbound frames. Never closed; done signals shutdown instead.
	send chan []byte

	// closed once when the connection ends, from either side.
	done chan struct{}

	closeOnce sync.Once

	maxFrameBytes int64

	logger zerolog.Logger
}

// NewConn wraps ws with a fresh connection ID. WritePump must be started by the caller.
func NewConn(ws *websocket.Conn, opts ConnOptions) *Conn {
	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = DefaultSendQueueSize
	}
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = DefaultMaxFrameBytes
	}

	id := uuid.NewString()

	return &Conn{
		id:            id,
		ws:            ws,
		send:          make(chan []byte, opts.SendQueueSize),
		done:          make(chan struct{}),
		maxFrameBytes: opts.MaxFrameBytes,
		logger:        logx.Logger().With().Str("conn_id", id).Logger(),
	}
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// Done is closed when the connection has been closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Send queues data for WritePump. It fails if the connection is closed or its
// queue is full; a full queue means the peer is not keeping up.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.done:
		return errs.NewError(errs.ErrTransportFailure, c.id)
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Send queue full.")
		return errs.NewError(errs.ErrTransportFailure, c.id)
	}
}

// Close sends a close frame with code and reason, then closes the socket.
// It is safe to call concurrently with the pumps and more than once.
func (c *Conn) Close(code int, reason string) error {
	var err error

	c.closeOnce.Do(func() {
		close(c.done)

		msg := websocket.FormatCloseMessage(code, reason)
		if writeErr := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); writeErr != nil {
			c.logger.Debug().Err(writeErr).Int("close_code", code).Msg("Close frame not delivered.")
		}

		err = c.ws.Close()
	})

	return err
}

// ReadLoop reads frames until the connection fails, the peer closes it, or Close is called.
func (c *Conn) ReadLoop(onFrame func(frame []byte)) error {
	c.ws.SetReadLimit(c.maxFrameBytes)

	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}

	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection read ended unexpectedly.")
			}
			return err
		}

		onFrame(frame)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
// A write failure closes the connection, which also ends ReadLoop.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing frame.")
				_ = c.Close(CloseSendFailed, "write failed")
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing ping.")
				_ = c.Close(CloseSendFailed, "ping failed")
				return
			}
		}
	}
}

func (c *Conn) write(messageType int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}
