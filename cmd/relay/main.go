package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syncwatch/server/internal/relay"
	"github.com/syncwatch/server/pkg/ctxlogger"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "RELAY_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "RELAY_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	logLevel = configVar[string]{
		envKey:       "RELAY_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
)

type relayConfig struct {
	Host     string
	Port     int
	LogLevel string
}

func loadRelayConfig() *relayConfig {
	pflag.String(host.flagKey, host.defaultValue, "Relay host")
	pflag.Int(port.flagKey, port.defaultValue, "Relay port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)

	return &relayConfig{
		Host:     viper.GetString(host.flagKey),
		Port:     viper.GetInt(port.flagKey),
		LogLevel: viper.GetString(logLevel.flagKey),
	}
}

func run(ctx context.Context, cfg *relayConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	hub := relay.NewHub(logger)
	controller := relay.NewController(hub, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.Mux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting relay", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}

func main() {
	ctx := context.Background()

	cfg := loadRelayConfig()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}
