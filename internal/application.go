package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tetris-backend/internal/config"
	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
	"github.com/rocketscienceinc/tetris-backend/internal/repository"
	"github.com/rocketscienceinc/tetris-backend/internal/repository/storage"
	"github.com/rocketscienceinc/tetris-backend/internal/usecase"
	"github.com/rocketscienceinc/tetris-backend/transport/rest"
	"github.com/rocketscienceinc/tetris-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	hub := protocol.NewHub(logger)
	options := usecase.RoomManagerOptions{
		MaxPenaltyLines: conf.Game.MaxPenaltyLines,
		SequenceBatch:   conf.Game.SequenceBatch,
		MaxNameLength:   conf.Game.MaxNameLength,
	}

	var rooms *usecase.RoomManager
	if conf.Redis.Enabled {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		matchRepo := repository.NewMatchRepository(redisStorage.Connection, conf.Redis.HistoryLimit)
		rooms = usecase.NewRoomManager(logger, protocol.NewNotifier(hub), matchRepo, options)
		log.Info("match archive enabled", "addr", conf.Redis.GetRedisAddr())
	} else {
		rooms = usecase.NewRoomManager(logger, protocol.NewNotifier(hub), nil, options)
	}

	handler := protocol.NewHandler(logger, rooms, hub)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, rooms).Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, handler, conf.Game.SendBuffer)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
