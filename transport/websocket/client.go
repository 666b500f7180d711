package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var (
	ErrSendQueueFull = errors.New("send queue is full")
	ErrClientClosed  = errors.New("client is closed")
)

// Client is one websocket connection. Its id is the player id for the connection lifetime.
type Client struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, sendBuffer int, logger *slog.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		logger: logger.With("playerID", id),

		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (that *Client) ID() string {
	return that.id
}

// Send - queues event for the write pump. A full queue closes the connection.
func (that *Client) Send(event protocol.Outbound) error {
	data, err := protocol.Encode(event)
	if err != nil {
		return err
	}

	select {
	case <-that.done:
		return ErrClientClosed
	default:
	}

	select {
	case that.send <- data:
		return nil
	default:
		that.logger.Warn("send queue is full, closing connection", "action", event.Action())
		that.close()

		return ErrSendQueueFull
	}
}

func (that *Client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.conn.Close()
	})
}

// closeOnDone closes the connection when the server shuts down. Hijacked connections are not
// closed by http.Server.Shutdown.
func (that *Client) closeOnDone(ctx context.Context) {
	select {
	case <-ctx.Done():
		that.logger.Debug("closing connection on shutdown")
		that.close()
	case <-that.done:
	}
}

// readPump - reads frames until the connection fails, then performs the implicit leave.
func (that *Client) readPump(ctx context.Context, handler eventHandler) {
	log := that.logger.With("method", "readPump")

	defer func() {
		that.close()
		handler.Disconnect(ctx, that.id)
		log.Info("WebSocket connection closed")
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}

			return
		}

		handler.HandleFrame(ctx, that.id, data)
	}
}

// writePump - drains the send queue and keeps the connection alive with pings.
func (that *Client) writePump() {
	log := that.logger.With("method", "writePump")

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.close()
	}()

	for {
		select {
		case data := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("failed to write ping", "error", err)
				return
			}

		case <-that.done:
			return
		}
	}
}
