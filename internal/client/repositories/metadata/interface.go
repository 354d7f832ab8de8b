package metadata

import (
	"context"
)

// Repository is a small key/value store for client bookkeeping: the sync
// high-water mark, the session signing key, and similar one-off values.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Well-known metadata keys.
const (
	KeyPullHighWaterMark = "pull_high_water_mark"
	KeySessionSigningKey = "session_signing_key"
	KeyLastSyncAt        = "last_sync_at"
)
