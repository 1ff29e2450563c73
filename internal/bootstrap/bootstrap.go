// Package bootstrap holds the process wiring shared by all four cmd/
// entrypoints: logger construction from LoggingConfig, venue client
// selection (real REST client vs in-memory mock), and quote-cache store
// selection (Redis vs in-memory).
package bootstrap

import (
	"log/slog"
	"os"

	"mm-core/internal/cache"
	"mm-core/internal/config"
	"mm-core/internal/venue"
)

// Logger builds a slog.Logger from a LoggingConfig, defaulting to an
// info-level text handler on stdout.
func Logger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// VenueClient returns a mock client when mock is true, otherwise a real
// REST client against baseURL signed with apiKey/apiSecret.
func VenueClient(mock bool, baseURL, apiKey, apiSecret string, logger *slog.Logger) venue.Client {
	if mock {
		return venue.NewMockClient()
	}
	return venue.NewRESTClient(baseURL, apiKey, apiSecret, logger)
}

// CacheStore returns a Redis-backed store when RedisAddr is set, otherwise
// an in-memory store (single process only).
func CacheStore(cfg config.CacheConfig) cache.Store {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryStore()
	}
	return cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}
