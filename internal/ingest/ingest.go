// Package ingest implements the quote ingesters: one long-lived process
// per venue connection, converting a noisy WebSocket feed of snapshot
// and/or snapshot+delta depth updates into the time-bucketed snapshots
// the market maker and self-trader read from the quote cache.
//
// Each ingester owns its running book(s) and reconnect buffers — there are
// no package-level globals — and publishes through the same cache.Store
// contract regardless of venue.
package ingest

import (
	"context"
	"time"
)

// Ingester runs a single venue connection until ctx is cancelled or an
// unrecoverable error occurs.
type Ingester interface {
	Run(ctx context.Context) error
}

// reconnectBackoff is the fixed delay between WS reconnect attempts,
// shared by every ingester implementation.
const reconnectBackoff = 5 * time.Second
