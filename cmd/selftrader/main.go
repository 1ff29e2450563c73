// Command selftrader runs one self-trading process: paired maker/taker
// orders that mirror a follow venue's last-trade price onto a maker
// symbol.
//
// Usage: selftrader <config.json>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mm-core/internal/bootstrap"
	"mm-core/internal/config"
	"mm-core/internal/selftrader"
)

func main() {
	if len(os.Args) != 2 {
		os.Stderr.WriteString("usage: selftrader <config.json>\n")
		os.Exit(1)
	}

	cfg, err := config.LoadST(os.Args[1])
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := bootstrap.Logger(cfg.Logging)
	client := bootstrap.VenueClient(cfg.Mock, cfg.BaseURL, cfg.APIKey, cfg.APISecret, logger)
	store := bootstrap.CacheStore(cfg.Cache)

	trader := selftrader.New(*cfg, client, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("self-trader started", "maker_symbol", cfg.MakerSymbol, "follow_symbol", cfg.FollowSymbol, "term_type", cfg.TermType)
	if err := trader.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("self-trader exited", "error", err)
		os.Exit(1)
	}
	logger.Info("self-trader stopped")
}
