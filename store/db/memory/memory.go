// Package memory provides a process-local store driver for demos and tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hrygo/linguapet/store"
)

type DB struct {
	values map[string]*store.KeyValue
	mu     sync.RWMutex
}

func NewDB() store.Driver {
	return &DB{values: make(map[string]*store.KeyValue)}
}

func (d *DB) Migrate(context.Context) error { return nil }

func (d *DB) Close() error { return nil }

func (d *DB) GetKeyValue(_ context.Context, find *store.FindKeyValue) (*store.KeyValue, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	kv, ok := d.values[find.Key]
	if !ok {
		return nil, nil
	}
	copied := *kv
	return &copied, nil
}

func (d *DB) UpsertKeyValue(_ context.Context, upsert *store.UpsertKeyValue) (*store.KeyValue, error) {
	kv := &store.KeyValue{Key: upsert.Key, Value: upsert.Value, UpdatedTs: time.Now().Unix()}
	d.mu.Lock()
	d.values[upsert.Key] = kv
	d.mu.Unlock()
	copied := *kv
	return &copied, nil
}

func (d *DB) ListKeyValues(context.Context) ([]*store.KeyValue, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	list := make([]*store.KeyValue, 0, len(d.values))
	for _, kv := range d.values {
		copied := *kv
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list, nil
}
