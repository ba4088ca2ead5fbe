package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/Sankalp-SISL/agentspace/internal/api"
	"github.com/Sankalp-SISL/agentspace/internal/assistant"
	"github.com/Sankalp-SISL/agentspace/internal/config"
	"github.com/Sankalp-SISL/agentspace/internal/msglog"
	"github.com/Sankalp-SISL/agentspace/internal/registry"
	"github.com/Sankalp-SISL/agentspace/internal/session"
	"github.com/Sankalp-SISL/agentspace/internal/status"
	"github.com/Sankalp-SISL/agentspace/internal/store"
	"github.com/Sankalp-SISL/agentspace/internal/typing"
)

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger here.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	kv, cleanup, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize durable store", "error", err)
		return 1
	}
	defer cleanup()

	rooms := registry.New(kv)
	messages := msglog.New(kv)
	sequencer := typing.NewSequencer(time.Duration(cfg.TypingDwellMillis) * time.Millisecond)
	backend := assistant.NewHTTPClient(cfg.AssistantURL, time.Duration(cfg.AssistantTimeoutSeconds)*time.Second)
	sessionClient := session.NewClient(rooms, messages, backend, sequencer)
	statusService := status.NewService(kv)

	chatHandler := api.NewChatHandler(sessionClient, rooms, messages, statusService)
	router := api.NewRouter(chatHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.AppPort, "store", cfg.StoreBackend, "assistant_url", cfg.AssistantURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

// openStore builds the configured durable store and a cleanup function for
// its underlying connection.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch strings.ToLower(cfg.StoreBackend) {
	case "sqlite":
		db, err := store.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)
		cleanup := func() {
			if err := db.Close(); err != nil {
				slog.Error("Failed to close database connection", "error", err)
			}
		}
		return store.NewSQLite(db), cleanup, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		slog.Info("Successfully connected to Redis.", "addr", cfg.RedisAddr)
		cleanup := func() {
			if err := rdb.Close(); err != nil {
				slog.Error("Failed to close redis connection", "error", err)
			}
		}
		return store.NewRedis(rdb), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
