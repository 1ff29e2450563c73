// Package cache implements the quote cache: a shared key-value contract
// used as the only cross-process state in the system. Writers (ingesters)
// and readers (market maker, self-trader) never synchronise beyond this
// store; see bucket.go for the time-bucketed freshness scheme built on top
// of it.
package cache

import "context"

// Store is the pluggable KV abstraction. Writes are fire-and-forget: callers
// log failures themselves and never block a publish pass on them. Reads
// tolerate missing keys by returning found=false rather than an error.
type Store interface {
	SetInt(ctx context.Context, key string, v int64) error
	GetInt(ctx context.Context, key string) (v int64, found bool, err error)
	SetDict(ctx context.Context, key string, v interface{}) error
	GetDict(ctx context.Context, key string, out interface{}) (found bool, err error)
}
