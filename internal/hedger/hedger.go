package hedger

import (
	"context"
	"log/slog"
	"time"

	"mm-core/internal/config"
	"mm-core/internal/venue"
)

const (
	tickInterval  = 100 * time.Millisecond
	logInterval   = 60 * time.Second
	purgeInterval = 600 * time.Second
	// configPollInterval is the cadence at which a cmd/hedger entrypoint
	// should poll the config store for a version bump and rebuild the
	// Hedger; Hedger itself has no store handle to poll.
	configPollInterval = 1 * time.Second
)

// Hedger wires a fill feed, risk book, and worker-pool executor together
// and drives the 100ms risk-position tick plus the housekeeping timers.
type Hedger struct {
	cfg      config.HedgerConfig
	proc     *FillProcessor
	executor *HedgeExecutor
	feed     *FillFeed
	logger   *slog.Logger
}

// New wires a Hedger for one maker/hedge symbol pair.
func New(cfg config.HedgerConfig, client venue.Client, logger *slog.Logger) *Hedger {
	logger = logger.With("component", "hedger")
	proc := NewFillProcessor()
	auth := venue.NewAuth(cfg.APIKey, cfg.APISecret)
	return &Hedger{
		cfg:      cfg,
		proc:     proc,
		executor: NewHedgeExecutor(cfg, client, logger),
		feed:     NewFillFeed(cfg.StreamURL, auth, cfg.APIKey, proc, logger),
		logger:   logger,
	}
}

// Run starts the fill feed and drives the main tick and housekeeping
// loops until ctx is cancelled, draining outstanding hedges on exit.
func (h *Hedger) Run(ctx context.Context) error {
	feedErrCh := make(chan error, 1)
	go func() { feedErrCh <- h.feed.Run(ctx) }()

	tick := time.NewTicker(tickInterval)
	defer tick.Stop()
	logTick := time.NewTicker(logInterval)
	defer logTick.Stop()
	purgeTick := time.NewTicker(purgeInterval)
	defer purgeTick.Stop()

	var didWorkSinceLastPurgeWindow bool

	for {
		select {
		case <-ctx.Done():
			h.executor.Drain(context.Background())
			return ctx.Err()

		case err := <-feedErrCh:
			if ctx.Err() != nil {
				h.executor.Drain(context.Background())
				return ctx.Err()
			}
			h.logger.Error("fill feed exited", "error", err)
			return err

		case <-tick.C:
			tasks := BuildHedgeTasks(h.proc.Book(), h.cfg.MinQtyPerOrder, h.cfg.MinAmtPerOrder, h.logger)
			if len(tasks) > 0 {
				didWorkSinceLastPurgeWindow = true
				h.executor.Submit(ctx, tasks)
			}
			h.proc.Book().RemoveFullyHedged()
			h.executor.Reconcile(ctx)

		case <-logTick.C:
			h.logger.Info("hedger housekeeping",
				"unhedged_task_count", h.executor.PendingCount(),
				"risk_position_count", h.proc.Book().Count(),
				"config_version", h.cfg.Version,
			)

		case <-purgeTick.C:
			if !didWorkSinceLastPurgeWindow {
				removed := h.proc.PurgeStaleTradeIDs()
				h.logger.Debug("purged stale trade ids", "removed", removed)
			}
			didWorkSinceLastPurgeWindow = false
		}
	}
}
