package selftrader

import (
	"context"
	"log/slog"
	"time"

	"mm-core/internal/config"
	"mm-core/internal/venue"
	"mm-core/pkg/types"
)

const (
	makerCancelRetries = 3
	makerCancelBackoff = 500 * time.Millisecond
)

// submitPair places the maker (GTX) and taker (IOC) legs in a single
// batch so they match against each other, then cancels the maker leg by
// its returned order id — on success exactly as on failure, since a
// resting post-only order left behind after the wash trade is no
// different from one stranded by a failed taker leg.
func submitPair(ctx context.Context, client venue.Client, cfg config.STConfig, side types.Side, result TickResult, nowMs int64, logger *slog.Logger) {
	maker, taker := legOrders(cfg, side, result, nowMs)

	ids, err := client.BatchMakeOrders(ctx, []types.NewOrder{maker, taker}, cfg.MakerSymbol)
	if err != nil || len(ids) == 0 || ids[0].OrderID == "" {
		logger.Error("self-trade maker leg failed", "error", err, "client_id", maker.ClientID)
		return
	}
	makerOrderID := ids[0].OrderID

	if len(ids) < 2 || ids[1].OrderID == "" {
		logger.Error("self-trade taker leg failed", "client_id", taker.ClientID)
	}
	cancelMakerWithRetry(ctx, client, cfg.MakerSymbol, makerOrderID, logger)
}

func cancelMakerWithRetry(ctx context.Context, client venue.Client, symbol, orderID string, logger *slog.Logger) {
	for attempt := 1; attempt <= makerCancelRetries; attempt++ {
		if res, err := client.CancelOrder(ctx, orderID, symbol); err == nil && res.OrderID != "" {
			return
		}
		if attempt < makerCancelRetries {
			time.Sleep(makerCancelBackoff)
		}
	}
	logger.Error("failed to cancel stranded self-trade maker leg after retries", "order_id", orderID, "symbol", symbol)
}
