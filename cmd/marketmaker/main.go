// Command marketmaker runs one market-making engine process: a single
// follow-venue order book mirrored onto one maker-venue symbol via a
// near ladder plus an optional far spread pass.
//
// Usage: marketmaker <config.json>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mm-core/internal/bootstrap"
	"mm-core/internal/config"
	"mm-core/internal/mm"
)

func main() {
	if len(os.Args) != 2 {
		os.Stderr.WriteString("usage: marketmaker <config.json>\n")
		os.Exit(1)
	}

	cfg, err := config.LoadMM(os.Args[1])
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := bootstrap.Logger(cfg.Logging)
	client := bootstrap.VenueClient(cfg.Mock, cfg.BaseURL, cfg.APIKey, cfg.APISecret, logger)
	store := bootstrap.CacheStore(cfg.Cache)

	engine := mm.New(*cfg, client, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("market maker started", "maker_symbol", cfg.MakerSymbol, "follow_symbol", cfg.FollowSymbol)
	if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("market maker exited", "error", err)
		os.Exit(1)
	}
	logger.Info("market maker stopped")
}
