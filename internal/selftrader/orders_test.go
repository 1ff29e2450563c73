package selftrader

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"mm-core/internal/venue"
	"mm-core/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSubmitPairCancelsMakerLegOnSuccess asserts that a clean paired
// submission still cancels the maker leg afterwards: only the taker leg
// should be left resting against the mock venue.
func TestSubmitPairCancelsMakerLegOnSuccess(t *testing.T) {
	client := venue.NewMockClient()
	cfg := baseSTConfig()

	submitPair(context.Background(), client, cfg, types.BUY, TickResult{Price: dec("100"), Qty: dec("1")}, 1000, testLogger())

	open, err := client.OpenOrders(context.Background(), cfg.MakerSymbol)
	if err != nil {
		t.Fatalf("OpenOrders: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected only the taker leg left resting after the maker leg is cancelled, got %d", len(open))
	}
	if open[0].ClientID[0] != 'T' {
		t.Errorf("expected the surviving order to be the taker leg, got client id %s", open[0].ClientID)
	}
}

func TestCancelMakerWithRetryGivesUpAfterThreeAttempts(t *testing.T) {
	client := venue.NewMockClient()
	// An unknown order id always fails to cancel against the mock venue.
	cancelMakerWithRetry(context.Background(), client, "BTCUSDT", "does-not-exist", testLogger())
}
