// rest.go implements the REST venue client: batch order placement, batch
// cancel, open-order listing, order-status lookup, and top-of-book reads.
// Every request is rate-limited via per-category TokenBuckets, automatically
// retried on 5xx errors, and, except for the top-of-book read,
// authenticated with BiFu HMAC headers.
package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"mm-core/pkg/types"
)

// RESTClient is the default Client implementation, talking to a single
// venue's HTTP API.
type RESTClient struct {
	http   *resty.Client
	auth   *Auth
	rl     *RateLimiter
	logger *slog.Logger
}

// NewRESTClient creates a rate-limited, retrying HTTP client against
// baseURL, authenticated with apiKey/apiSecret.
func NewRESTClient(baseURL, apiKey, apiSecret string, logger *slog.Logger) *RESTClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")

	return &RESTClient{
		http:   httpClient,
		auth:   NewAuth(apiKey, apiSecret),
		rl:     NewRateLimiter(),
		logger: logger.With("component", "venue-client"),
	}
}

// BatchMakeOrders submits orders for symbol, returning one OrderID per
// input order (in the same order); an empty OrderID marks a failed order.
func (c *RESTClient) BatchMakeOrders(ctx context.Context, orders []types.NewOrder, symbol string) ([]types.OrderID, error) {
	if len(orders) == 0 {
		return nil, nil
	}
	if err := c.rl.Order.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(orders)
	if err != nil {
		return nil, fmt.Errorf("marshal orders: %w", err)
	}
	headers := c.auth.RESTHeaders("POST", "/api/v1/orders/batch", string(body))

	var results []types.OrderID
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(json.RawMessage(body)).
		SetResult(&results).
		Post("/api/v1/orders/batch")
	if err != nil {
		return nil, fmt.Errorf("batch make orders: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("batch make orders: status %d: %s", resp.StatusCode(), resp.String())
	}
	return results, nil
}

// BatchCancel cancels multiple orders by id, returning the ids actually
// cancelled.
func (c *RESTClient) BatchCancel(ctx context.Context, ids []string, symbol string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := c.rl.Cancel.Wait(ctx); err != nil {
		return nil, err
	}

	payload := struct {
		OrderIDs []string `json:"order_ids"`
		Symbol   string   `json:"symbol"`
	}{OrderIDs: ids, Symbol: symbol}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal cancel request: %w", err)
	}
	headers := c.auth.RESTHeaders("DELETE", "/api/v1/orders/batch", string(body))

	var result struct {
		Cancelled []string `json:"cancelled"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(json.RawMessage(body)).
		SetResult(&result).
		Delete("/api/v1/orders/batch")
	if err != nil {
		return nil, fmt.Errorf("batch cancel: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("batch cancel: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result.Cancelled, nil
}

// CancelOrder cancels a single order by id.
func (c *RESTClient) CancelOrder(ctx context.Context, id string, symbol string) (types.OrderID, error) {
	if err := c.rl.Cancel.Wait(ctx); err != nil {
		return types.OrderID{}, err
	}
	path := fmt.Sprintf("/api/v1/orders/%s", id)
	headers := c.auth.RESTHeaders("DELETE", path, "")

	var result types.OrderID
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Delete(path)
	if err != nil {
		return types.OrderID{}, fmt.Errorf("cancel order: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return types.OrderID{}, fmt.Errorf("cancel order: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// OpenOrders lists currently-resting orders for symbol.
func (c *RESTClient) OpenOrders(ctx context.Context, symbol string) ([]types.OpenOrder, error) {
	if err := c.rl.Read.Wait(ctx); err != nil {
		return nil, err
	}
	headers := c.auth.RESTHeaders("GET", "/api/v1/orders/open", "")

	var result []types.OpenOrder
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get("/api/v1/orders/open")
	if err != nil {
		return nil, fmt.Errorf("open orders: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("open orders: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// OrderStatus fetches the status of a single order.
func (c *RESTClient) OrderStatus(ctx context.Context, orderID string, symbol string) (types.OrderStatus, error) {
	if err := c.rl.Read.Wait(ctx); err != nil {
		return types.OrderStatus{}, err
	}
	headers := c.auth.RESTHeaders("GET", "/api/v1/order", "")

	var result types.OrderStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParam("order_id", orderID).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get("/api/v1/order")
	if err != nil {
		return types.OrderStatus{}, fmt.Errorf("order status: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return types.OrderStatus{}, fmt.Errorf("order status: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// TopAskBid fetches the top-of-book for symbol.
func (c *RESTClient) TopAskBid(ctx context.Context, symbol string) (types.TopAskBid, error) {
	if err := c.rl.Read.Wait(ctx); err != nil {
		return types.TopAskBid{}, err
	}

	var result []types.TopAskBid
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get("/api/v1/ticker/bookTicker")
	if err != nil {
		return types.TopAskBid{}, fmt.Errorf("top ask/bid: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return types.TopAskBid{}, fmt.Errorf("top ask/bid: status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(result) == 0 {
		return types.TopAskBid{}, fmt.Errorf("top ask/bid: empty response for %s", symbol)
	}
	return result[0], nil
}
