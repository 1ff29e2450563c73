package venue

import (
	"context"
	"testing"

	"mm-core/pkg/types"

	"github.com/shopspring/decimal"
)

func TestMockClientBatchMakeThenOpenOrders(t *testing.T) {
	t.Parallel()
	c := NewMockClient()
	orders := []types.NewOrder{
		{Symbol: "BTCUSDT", ClientID: "c1", Side: types.BUY, Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1)},
		{Symbol: "BTCUSDT", ClientID: "c2", Side: types.SELL, Price: decimal.NewFromInt(101), Quantity: decimal.NewFromInt(1)},
	}
	ids, err := c.BatchMakeOrders(context.Background(), orders, "BTCUSDT")
	if err != nil {
		t.Fatalf("BatchMakeOrders: %v", err)
	}
	if len(ids) != 2 || ids[0].OrderID == "" || ids[1].OrderID == "" {
		t.Fatalf("expected 2 non-empty order ids, got %+v", ids)
	}

	open, err := c.OpenOrders(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("OpenOrders: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open orders, got %d", len(open))
	}
}

func TestMockClientCancelOrder(t *testing.T) {
	t.Parallel()
	c := NewMockClient()
	ids, _ := c.BatchMakeOrders(context.Background(), []types.NewOrder{
		{Symbol: "BTCUSDT", ClientID: "c1", Side: types.BUY},
	}, "BTCUSDT")

	result, err := c.CancelOrder(context.Background(), ids[0].OrderID, "BTCUSDT")
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if result.OrderID != ids[0].OrderID {
		t.Errorf("expected cancelled id %s, got %s", ids[0].OrderID, result.OrderID)
	}

	open, _ := c.OpenOrders(context.Background(), "BTCUSDT")
	if len(open) != 0 {
		t.Errorf("expected no open orders after cancel, got %d", len(open))
	}
}

func TestMockClientBatchCancelOnlyReturnsKnownIDs(t *testing.T) {
	t.Parallel()
	c := NewMockClient()
	ids, _ := c.BatchMakeOrders(context.Background(), []types.NewOrder{
		{Symbol: "BTCUSDT", ClientID: "c1", Side: types.BUY},
	}, "BTCUSDT")

	cancelled, err := c.BatchCancel(context.Background(), []string{ids[0].OrderID, "nonexistent"}, "BTCUSDT")
	if err != nil {
		t.Fatalf("BatchCancel: %v", err)
	}
	if len(cancelled) != 1 || cancelled[0] != ids[0].OrderID {
		t.Errorf("expected only real id cancelled, got %+v", cancelled)
	}
}
