// Command ingester runs one quote-ingester process: subscribes to a
// venue's public WS feeds for a set of symbols and publishes depth and
// ticker snapshots into the shared quote cache.
//
// Usage: ingester <config.json>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mm-core/internal/bootstrap"
	"mm-core/internal/config"
	"mm-core/internal/ingest"
)

type runner interface {
	Run(ctx context.Context) error
}

func main() {
	if len(os.Args) != 2 {
		os.Stderr.WriteString("usage: ingester <config.json>\n")
		os.Exit(1)
	}

	cfg, err := config.LoadIngester(os.Args[1])
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := bootstrap.Logger(cfg.Logging)
	store := bootstrap.CacheStore(cfg.Cache)

	var ing runner
	switch cfg.Exchange {
	case "binance_future":
		ing = ingest.NewBinanceIngester(cfg.WSURL, cfg.Symbols, store, logger)
	case "okx":
		ing = ingest.NewOKXIngester(cfg.WSURL, cfg.Symbols, store, logger)
	default:
		logger.Error("unknown exchange", "exchange", cfg.Exchange)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("ingester started", "exchange", cfg.Exchange, "symbols", cfg.Symbols)
	if err := ing.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("ingester exited", "error", err)
		os.Exit(1)
	}
	logger.Info("ingester stopped")
}
