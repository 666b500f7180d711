package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
)

const (
	defaultSendBuffer = 64
	shutdownTimeout   = 5 * time.Second
)

type eventHandler interface {
	Connect(sink protocol.Sink)
	Disconnect(ctx context.Context, id string)
	HandleFrame(ctx context.Context, id string, data []byte)
}

type Server struct {
	logger     *slog.Logger
	handler    eventHandler
	upgrader   websocket.Upgrader
	sendBuffer int
}

func New(logger *slog.Logger, handler eventHandler, sendBuffer int) *Server {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}

	return &Server{
		logger:  logger.With("component", "websocket"),
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the game client is served from another origin
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		sendBuffer: sendBuffer,
	}
}

// Handler - returns the websocket route. ctx bounds every connection served by it.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and runs it until the peer goes away.
func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(uuid.NewString(), conn, that.sendBuffer, that.logger)
	log.Info("WebSocket connection established", "playerID", client.ID())

	that.handler.Connect(client)

	go client.writePump()
	go client.closeOnDone(ctx)

	client.readPump(ctx, that.handler)
}
