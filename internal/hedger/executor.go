package hedger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"mm-core/internal/config"
	"mm-core/internal/venue"
	"mm-core/pkg/types"
)

// pendingHedge is an in-flight hedge awaiting reconciliation against the
// hedge venue's order-status endpoint.
type pendingHedge struct {
	OrderID string
	Symbol  string
}

// HedgeExecutor runs hedge tasks on a bounded worker pool and reconciles
// their resulting orders against the hedge venue.
type HedgeExecutor struct {
	cfg    config.HedgerConfig
	client venue.Client
	logger *slog.Logger

	mu      sync.Mutex
	pending []pendingHedge
}

// NewHedgeExecutor creates an executor for one hedger process.
func NewHedgeExecutor(cfg config.HedgerConfig, client venue.Client, logger *slog.Logger) *HedgeExecutor {
	return &HedgeExecutor{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "hedge-executor"),
	}
}

// Submit dispatches every task onto the bounded pool (sized
// cfg.WorkerPoolSize, default handled by config.Validate) and returns
// immediately — the 100ms main tick must never block on a hedge actually
// landing. Each worker pads price by slippage, rounds to the venue's
// decimals, and queues a successful submission for reconciliation on a
// later tick.
func (e *HedgeExecutor) Submit(ctx context.Context, tasks []HedgeTask) {
	if len(tasks) == 0 {
		return
	}
	p := pool.New().WithMaxGoroutines(e.cfg.WorkerPoolSize)
	for _, task := range tasks {
		task := task
		p.Go(func() {
			e.instantHedge(ctx, task)
		})
	}
	go p.Wait()
}

// instantHedge is the pool-worker body: pad price by slippage, round, and
// submit a single LIMIT order via the venue client's batch interface.
func (e *HedgeExecutor) instantHedge(ctx context.Context, task HedgeTask) {
	price := applySlippage(task.Price, task.Side, e.cfg.Slippage)
	price = price.Round(int32(e.cfg.PriceDecimals))
	qty := task.Qty.Round(int32(e.cfg.QtyDecimals))

	order := types.NewOrder{
		Symbol:   e.cfg.HedgeSymbol,
		ClientID: fmt.Sprintf("H%s_%s", e.cfg.HedgeSymbol, task.OrderIDs[0]),
		Side:     task.Side,
		Type:     types.OrderTypeLimit,
		Quantity: qty,
		Price:    price,
	}

	ids, err := e.client.BatchMakeOrders(ctx, []types.NewOrder{order}, e.cfg.HedgeSymbol)
	if err != nil || len(ids) == 0 || ids[0].OrderID == "" {
		e.logger.Error("hedge submission failed", "error", err, "symbol", task.Symbol, "side", task.Side, "qty", qty)
		return
	}

	e.mu.Lock()
	e.pending = append(e.pending, pendingHedge{OrderID: ids[0].OrderID, Symbol: e.cfg.HedgeSymbol})
	e.mu.Unlock()
}

// applySlippage clamps slippage to [1,10] and pads the price toward
// faster fill: up for BUY, down for SELL.
func applySlippage(price decimal.Decimal, side types.Side, slippage float64) decimal.Decimal {
	if slippage < 1 {
		slippage = 1
	}
	if slippage > 10 {
		slippage = 10
	}
	pad := decimal.NewFromFloat(slippage).Mul(decimal.NewFromFloat(0.01))
	if side == types.BUY {
		return price.Mul(decimal.NewFromInt(1).Add(pad))
	}
	return price.Mul(decimal.NewFromInt(1).Sub(pad))
}

// Reconcile polls order status for every pending hedge (wait_for_hedge's
// per-tick half): orders missing a status field raise an operator alert,
// everything else is logged and dropped from the pending set. Skips
// entirely when hedge_symbol is "manual".
func (e *HedgeExecutor) Reconcile(ctx context.Context) {
	if e.cfg.HedgeSymbol == "manual" {
		return
	}

	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, p := range pending {
		status, err := e.client.OrderStatus(ctx, p.OrderID, p.Symbol)
		if err != nil || status.Status == "" {
			e.logger.Error("hedge order status missing, operator alert", "order_id", p.OrderID, "symbol", p.Symbol, "error", err)
			continue
		}
		e.logger.Info("hedge reconciled", "order_id", p.OrderID, "symbol", p.Symbol, "executed_qty", status.ExecutedQty, "status", status.Status)
	}
}

// PendingCount reports the number of hedges awaiting reconciliation (used
// by the 60s housekeeping log).
func (e *HedgeExecutor) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Drain blocks until every pending hedge has been reconciled — called on
// shutdown per the lifecycle contract (wait_for_hedge_multithread(wait=true)).
func (e *HedgeExecutor) Drain(ctx context.Context) {
	for e.PendingCount() > 0 {
		e.Reconcile(ctx)
	}
}
