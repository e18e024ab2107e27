package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/syncwatch/server/internal/domain"
	"github.com/syncwatch/server/internal/feed"
	stateRedis "github.com/syncwatch/server/internal/repository/state/redis"
	"github.com/syncwatch/server/internal/session"
	"github.com/syncwatch/server/internal/transport/wsbroadcast"
	"github.com/syncwatch/server/pkg/ctxlogger"
	"github.com/syncwatch/server/pkg/redisclient"
)

type AppConfig struct {
	SessionId     string `json:"session_id"`
	ParticipantId string `json:"participant_id"`
	RelayURL      string `json:"relay_url"`
	VideosURL     string `json:"videos_url"`
	ClothingURL   string `json:"clothing_url"`
	LogLevel      string `json:"log_level"`
	RedisPort     int    `json:"redis_port"`
	RedisHost     string `json:"redis_host"`
	RedisPassword string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.SessionId == "" {
		return fmt.Errorf("session id is required")
	}
	if cfg.RelayURL == "" {
		return fmt.Errorf("relay url is required")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	store := stateRedis.NewRepo(rc, cfg.SessionId, 24*time.Hour, logger)

	client, err := wsbroadcast.Dial(ctx, cfg.RelayURL, cfg.ParticipantId, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	playlist := domain.NewPlaylist()
	if cfg.VideosURL != "" && cfg.ClothingURL != "" {
		loader := feed.NewLoader(feed.Config{
			VideosURL:   cfg.VideosURL,
			ClothingURL: cfg.ClothingURL,
		}, logger)

		videos, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		playlist.Reset(videos)
	}

	player := slogPlayer{logger: logger}
	renderer := slogRenderer{logger: logger}

	engine, err := session.NewEngine(session.Config{}, session.Deps{
		Store:    store,
		Channel:  client,
		Roster:   client,
		Player:   player,
		Renderer: renderer,
		Playlist: playlist,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	playlist.OnCurrentChanged(func(current *domain.Video) {
		if current != nil {
			logger.InfoContext(ctx, "current video changed", "video_id", current.Id, "name", current.Name)
		} else {
			logger.InfoContext(ctx, "playback stopped")
		}
	})

	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer engine.Stop()

	logger.InfoContext(ctx, "peer started",
		"session_id", cfg.SessionId,
		"participant_id", client.LocalId(),
		"playlist_length", playlist.Length(),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-sig:
		logger.InfoContext(ctx, "shutting down")
	case <-client.Done():
		logger.InfoContext(ctx, "relay connection closed, shutting down")
	case <-ctx.Done():
	}

	return nil
}

// slogPlayer stands in for the UI-layer video element in a headless peer.
type slogPlayer struct {
	logger *slog.Logger
}

func (p slogPlayer) Play()  { p.logger.Info("player", "action", "play") }
func (p slogPlayer) Pause() { p.logger.Info("player", "action", "pause") }

type slogRenderer struct {
	logger *slog.Logger
}

func (r slogRenderer) Show(n session.Notification) {
	r.logger.Info("notification", "severity", n.Severity, "text", n.Text)
}

func (r slogRenderer) Dismiss(n session.Notification) {
	r.logger.Debug("notification dismissed", "text", n.Text)
}
