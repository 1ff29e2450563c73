// Command hedger runs one hedger process: consumes a private fill feed
// for a maker symbol and instantly hedges out accumulated risk on a
// (possibly different) hedge venue/symbol.
//
// Usage: hedger <config.json>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mm-core/internal/bootstrap"
	"mm-core/internal/config"
	"mm-core/internal/hedger"
)

// configPollInterval is the cadence at which this entrypoint polls the
// quote cache for a config version bump. Hedger itself has no config
// store handle — rebuilding it is this process's responsibility.
const configPollInterval = 1 * time.Second

func main() {
	if len(os.Args) != 2 {
		os.Stderr.WriteString("usage: hedger <config.json>\n")
		os.Exit(1)
	}
	path := os.Args[1]

	cfg, err := config.LoadHedger(path)
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := bootstrap.Logger(cfg.Logging)
	store := bootstrap.CacheStore(cfg.Cache)
	versionKey := "config_version:hedger:" + cfg.MakerSymbol

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := func(runCtx context.Context, cfg config.HedgerConfig) {
		client := bootstrap.VenueClient(cfg.Mock, cfg.BaseURL, cfg.APIKey, cfg.APISecret, logger)
		h := hedger.New(cfg, client, logger)
		logger.Info("hedger started", "maker_symbol", cfg.MakerSymbol, "hedge_symbol", cfg.HedgeSymbol)
		if err := h.Run(runCtx); err != nil && runCtx.Err() == nil {
			logger.Error("hedger exited", "error", err)
		}
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	go run(runCtx, *cfg)

	version := cfg.Version
	poll := time.NewTicker(configPollInterval)
	defer poll.Stop()
	for {
		select {
		case <-ctx.Done():
			cancelRun()
			return
		case <-poll.C:
			kvVersion, found, err := store.GetInt(ctx, versionKey)
			if err != nil {
				logger.Error("config version poll failed, keeping previous version", "error", err)
				continue
			}
			if !found || kvVersion == int64(version) {
				continue
			}
			next, err := config.LoadHedger(path)
			if err != nil {
				logger.Error("config reload failed, keeping previous version", "error", err)
				continue
			}
			logger.Info("config version changed, restarting hedger", "old_version", version, "new_version", kvVersion)
			cancelRun()
			version = int(kvVersion)
			runCtx, cancelRun = context.WithCancel(ctx)
			go run(runCtx, *next)
		}
	}
}
