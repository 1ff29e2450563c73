// Package venue provides a uniform client abstraction over centralized
// exchange REST APIs: batch order placement, batch cancel, single cancel,
// open-order listing, order-status lookup, and top-of-book reads. The
// market maker, hedger, and self-trader consume venues only through the
// Client interface; RESTClient and MockClient are its two
// implementations.
package venue

import (
	"context"

	"mm-core/pkg/types"
)

// Client is the capability set every venue implementation satisfies.
type Client interface {
	BatchMakeOrders(ctx context.Context, orders []types.NewOrder, symbol string) ([]types.OrderID, error)
	BatchCancel(ctx context.Context, ids []string, symbol string) ([]string, error)
	CancelOrder(ctx context.Context, id string, symbol string) (types.OrderID, error)
	OpenOrders(ctx context.Context, symbol string) ([]types.OpenOrder, error)
	OrderStatus(ctx context.Context, orderID string, symbol string) (types.OrderStatus, error)
	TopAskBid(ctx context.Context, symbol string) (types.TopAskBid, error)
}
