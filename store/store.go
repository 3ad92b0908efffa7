package store

import (
	"context"

	"github.com/hrygo/linguapet/internal/profile"
)

// Store provides access to the persisted key/value state.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Get returns the value stored under key. ok is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	kv, err := s.driver.GetKeyValue(ctx, &FindKeyValue{Key: key})
	if err != nil {
		return "", false, err
	}
	if kv == nil {
		return "", false, nil
	}
	return kv.Value, true, nil
}

// List returns every stored entry ordered by key.
func (s *Store) List(ctx context.Context) ([]*KeyValue, error) {
	return s.driver.ListKeyValues(ctx)
}

// Set replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.driver.UpsertKeyValue(ctx, &UpsertKeyValue{Key: key, Value: value})
	return err
}
