package hedger

import (
	"io"
	"log/slog"
	"testing"

	"mm-core/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestBuildHedgeTasksScenarioD reproduces scenario D literally: order A
// buys 1.0 @ 30000, order B sells 0.3 @ 30010. Aggregated qty = 0.7,
// amt = 20997 (signed); emitted hedge: SELL 0.7 @ ~29995.71. Both
// contributing orders end up fully hedged and removed.
func TestBuildHedgeTasksScenarioD(t *testing.T) {
	book := NewRiskBook()
	book.Upsert(types.FilledOrder{TradeID: "tA", OrderID: "A", Symbol: "BTCUSDT", Side: types.BUY, Qty: dec("1.0"), Amount: dec("30000")})
	book.Upsert(types.FilledOrder{TradeID: "tB", OrderID: "B", Symbol: "BTCUSDT", Side: types.SELL, Qty: dec("0.3"), Amount: dec("9003")})

	tasks := BuildHedgeTasks(book, 0.01, 1, testLogger())
	if len(tasks) != 1 {
		t.Fatalf("expected 1 hedge task, got %d: %+v", len(tasks), tasks)
	}
	task := tasks[0]
	if task.Side != types.SELL {
		t.Errorf("expected SELL hedge side, got %s", task.Side)
	}
	if !task.Qty.Equal(dec("0.7")) {
		t.Errorf("expected hedge qty 0.7, got %s", task.Qty)
	}
	wantPrice := dec("20997").Div(dec("0.7"))
	if task.Price.Sub(wantPrice).Abs().GreaterThan(dec("0.001")) {
		t.Errorf("expected hedge price ~%s, got %s", wantPrice, task.Price)
	}

	book.RemoveFullyHedged()
	if book.Count() != 0 {
		t.Errorf("expected both contributing orders removed after marking hedged, count=%d", book.Count())
	}
}

func TestBuildHedgeTasksSkipsBelowMinimums(t *testing.T) {
	book := NewRiskBook()
	book.Upsert(types.FilledOrder{TradeID: "t1", OrderID: "o1", Symbol: "BTCUSDT", Side: types.BUY, Qty: dec("0.0001"), Amount: dec("3")})

	tasks := BuildHedgeTasks(book, 0.01, 10, testLogger())
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks below minimums, got %+v", tasks)
	}
	if book.Count() != 1 {
		t.Error("expected position left untouched (not marked hedged) when skipped below minimum")
	}
}

func TestBuildHedgeTasksSkipsSelfHedgingZeroNet(t *testing.T) {
	book := NewRiskBook()
	book.Upsert(types.FilledOrder{TradeID: "t1", OrderID: "o1", Symbol: "BTCUSDT", Side: types.BUY, Qty: dec("1"), Amount: dec("100")})
	book.Upsert(types.FilledOrder{TradeID: "t2", OrderID: "o2", Symbol: "BTCUSDT", Side: types.SELL, Qty: dec("1"), Amount: dec("100")})

	tasks := BuildHedgeTasks(book, 0.01, 1, testLogger())
	if len(tasks) != 0 {
		t.Fatalf("expected net-zero aggregate to be self-hedging (no task), got %+v", tasks)
	}
}
