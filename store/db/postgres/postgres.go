package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/linguapet/internal/profile"
	"github.com/hrygo/linguapet/store"
)

// undefinedTable is the PostgreSQL error code for a missing relation.
const undefinedTable = "42P01"

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL connection pool for profile.DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL,
		updated_ts BIGINT NOT NULL
	)`
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to migrate kv_store")
	}
	return nil
}

func (d *DB) GetKeyValue(ctx context.Context, find *store.FindKeyValue) (*store.KeyValue, error) {
	kv := &store.KeyValue{}
	err := d.db.QueryRowContext(ctx, "SELECT key, value, updated_ts FROM kv_store WHERE key = $1", find.Key).
		Scan(&kv.Key, &kv.Value, &kv.UpdatedTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to get key "+find.Key)
	}
	return kv, nil
}

func (d *DB) UpsertKeyValue(ctx context.Context, upsert *store.UpsertKeyValue) (*store.KeyValue, error) {
	kv := &store.KeyValue{
		Key:       upsert.Key,
		Value:     upsert.Value,
		UpdatedTs: time.Now().Unix(),
	}
	stmt := `INSERT INTO kv_store (key, value, updated_ts) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_ts = EXCLUDED.updated_ts`
	if _, err := d.db.ExecContext(ctx, stmt, kv.Key, kv.Value, kv.UpdatedTs); err != nil {
		return nil, wrapError(err, "failed to upsert key "+upsert.Key)
	}
	return kv, nil
}

func (d *DB) ListKeyValues(ctx context.Context) ([]*store.KeyValue, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT key, value, updated_ts FROM kv_store ORDER BY key")
	if err != nil {
		return nil, wrapError(err, "failed to list key values")
	}
	defer rows.Close()

	list := []*store.KeyValue{}
	for rows.Next() {
		kv := &store.KeyValue{}
		if err := rows.Scan(&kv.Key, &kv.Value, &kv.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan key value")
		}
		list = append(list, kv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate key values")
	}
	return list, nil
}

// wrapError adds a migration hint when the kv_store table is missing.
func wrapError(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return errors.Wrap(err, msg+" (kv_store missing, run migrate first)")
	}
	return errors.Wrap(err, msg)
}
