package venue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"mm-core/pkg/types"

	"github.com/shopspring/decimal"
)

// MockClient is an in-memory venue stub used by config's mock: true flag
// and by MM/hedger/self-trader unit tests. It never makes network calls:
// every submitted order is accepted immediately and tracked so OpenOrders
// and OrderStatus reflect it.
type MockClient struct {
	mu      sync.Mutex
	orders  map[string]types.NewOrder
	nextID  int64
	TopBook types.TopAskBid // set by tests to control TopAskBid responses
}

// NewMockClient creates an empty mock venue.
func NewMockClient() *MockClient {
	return &MockClient{
		orders: make(map[string]types.NewOrder),
		TopBook: types.TopAskBid{
			AskPrice: decimal.NewFromInt(1),
			AskQty:   decimal.NewFromInt(1),
			BidPrice: decimal.NewFromFloat(0.99),
			BidQty:   decimal.NewFromInt(1),
		},
	}
}

func (m *MockClient) newOrderID() string {
	id := atomic.AddInt64(&m.nextID, 1)
	return fmt.Sprintf("mock-%d", id)
}

func (m *MockClient) BatchMakeOrders(_ context.Context, orders []types.NewOrder, _ string) ([]types.OrderID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.OrderID, len(orders))
	for i, o := range orders {
		id := m.newOrderID()
		m.orders[id] = o
		out[i] = types.OrderID{OrderID: id}
	}
	return out, nil
}

func (m *MockClient) BatchCancel(_ context.Context, ids []string, _ string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cancelled []string
	for _, id := range ids {
		if _, ok := m.orders[id]; ok {
			delete(m.orders, id)
			cancelled = append(cancelled, id)
		}
	}
	return cancelled, nil
}

func (m *MockClient) CancelOrder(_ context.Context, id string, _ string) (types.OrderID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return types.OrderID{}, nil
	}
	delete(m.orders, id)
	return types.OrderID{OrderID: id}, nil
}

func (m *MockClient) OpenOrders(_ context.Context, symbol string) ([]types.OpenOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.OpenOrder
	for id, o := range m.orders {
		if o.Symbol != symbol {
			continue
		}
		out = append(out, types.OpenOrder{OrderID: id, ClientID: o.ClientID, Symbol: o.Symbol, Side: o.Side})
	}
	return out, nil
}

func (m *MockClient) OrderStatus(_ context.Context, orderID string, _ string) (types.OrderStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return types.OrderStatus{Status: "FILLED", ExecutedQty: decimal.Zero}, nil
	}
	return types.OrderStatus{Status: "NEW", ExecutedQty: decimal.Zero, Side: o.Side}, nil
}

func (m *MockClient) TopAskBid(_ context.Context, _ string) (types.TopAskBid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TopBook, nil
}
