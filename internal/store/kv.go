package store

import "context"

// KV is the small string key-value surface the mission ledger persists
// through. A miss is (value="", ok=false), not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
