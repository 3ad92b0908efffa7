package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/linguapet/internal/profile"
	"github.com/hrygo/linguapet/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database named by profile.DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	// Ensure a DSN is set before attempting to open the database.
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// Connect to the database with some sane settings:
	// - No shared-cache: it's obsolete; WAL journal mode is a better solution.
	// - Journal mode set to WAL: it's the recommended journal mode for most applications
	// as it prevents locking issues.
	//
	// Notes:
	// - When using the `modernc.org/sqlite` driver, each pragma must be prefixed with `_pragma=`.
	//
	// References:
	// - https://pkg.go.dev/modernc.org/sqlite#Driver.Open
	// - https://www.sqlite.org/pragma.html
	separator := "?"
	if strings.Contains(profile.DSN, "?") {
		separator = "&"
	}
	sqliteDB, err := sql.Open("sqlite", profile.DSN+separator+"_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// SQLite: single connection is optimal with WAL for a single local user.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	return &DB{db: sqliteDB, profile: profile}, nil
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
	err := d.db.QueryRowContext(ctx, "SELECT key, value, updated_ts FROM kv_store WHERE key = ?", find.Key).
		Scan(&kv.Key, &kv.Value, &kv.UpdatedTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get key %s", find.Key)
	}
	return kv, nil
}

func (d *DB) UpsertKeyValue(ctx context.Context, upsert *store.UpsertKeyValue) (*store.KeyValue, error) {
	kv := &store.KeyValue{
		Key:       upsert.Key,
		Value:     upsert.Value,
		UpdatedTs: time.Now().Unix(),
	}
	stmt := `INSERT INTO kv_store (key, value, updated_ts) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_ts = excluded.updated_ts`
	if _, err := d.db.ExecContext(ctx, stmt, kv.Key, kv.Value, kv.UpdatedTs); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert key %s", upsert.Key)
	}
	return kv, nil
}

func (d *DB) ListKeyValues(ctx context.Context) ([]*store.KeyValue, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT key, value, updated_ts FROM kv_store ORDER BY key")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list key values")
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
