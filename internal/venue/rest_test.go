package venue

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"mm-core/pkg/types"

	"github.com/shopspring/decimal"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBatchMakeOrdersEmpty(t *testing.T) {
	t.Parallel()
	c := NewRESTClient("http://unused", "k", "s", testLogger())
	results, err := c.BatchMakeOrders(context.Background(), nil, "BTCUSDT")
	if err != nil {
		t.Fatalf("BatchMakeOrders: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil for empty orders, got %v", results)
	}
}

func TestBatchMakeOrdersSignsAndParsesResponse(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Decode-MM-Auth-Access-Key") != "k" {
			t.Errorf("missing access key header")
		}
		if r.Header.Get("Decode-MM-Auth-Signature") == "" {
			t.Errorf("missing signature header")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]types.OrderID{{OrderID: "abc123"}})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "k", "s", testLogger())
	orders := []types.NewOrder{
		{Symbol: "BTCUSDT", ClientID: "c1", Side: types.BUY, Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1)},
	}
	results, err := c.BatchMakeOrders(context.Background(), orders, "BTCUSDT")
	if err != nil {
		t.Fatalf("BatchMakeOrders: %v", err)
	}
	if len(results) != 1 || results[0].OrderID != "abc123" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestTopAskBidEmptyResponseErrors(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]types.TopAskBid{})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "k", "s", testLogger())
	_, err := c.TopAskBid(context.Background(), "BTCUSDT")
	if err == nil {
		t.Error("expected error for empty top-of-book response")
	}
}
