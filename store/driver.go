package store

import "context"

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	Migrate(ctx context.Context) error
	Close() error

	// GetKeyValue returns nil without error when the key does not exist.
	GetKeyValue(ctx context.Context, find *FindKeyValue) (*KeyValue, error)
	UpsertKeyValue(ctx context.Context, upsert *UpsertKeyValue) (*KeyValue, error)
	ListKeyValues(ctx context.Context) ([]*KeyValue, error)
}
