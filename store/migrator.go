package store

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/linguapet/internal/version"
)

// SchemaVersionKey records the version of the binary that last migrated the store.
const SchemaVersionKey = "system.schema_version"

// ErrNewerSchema means the store was last written by a newer release.
var ErrNewerSchema = errors.New("store was written by a newer version")

// Migrate creates the schema and stamps it with the running version.
// In prod a store stamped by a newer release is refused; other modes only
// warn and leave the stamp untouched.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.driver.Migrate(ctx); err != nil {
		return err
	}

	current := s.currentVersion()
	stored, ok, err := s.Get(ctx, SchemaVersionKey)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}

	if ok && !version.IsVersionGreaterOrEqualThan(current, stored) {
		if s.profile != nil && !s.profile.IsDev() {
			return errors.Wrapf(ErrNewerSchema, "store version %s, binary version %s", stored, current)
		}
		slog.Warn("store was written by a newer version", "stored", stored, "current", current)
		return nil
	}

	if ok && !version.IsVersionGreaterThan(current, stored) {
		return nil
	}
	if err := s.Set(ctx, SchemaVersionKey, current); err != nil {
		return errors.Wrap(err, "failed to write schema version")
	}
	if ok {
		slog.Info("store schema upgraded", "from", stored, "to", current)
	}
	return nil
}

func (s *Store) currentVersion() string {
	if s.profile != nil && s.profile.Version != "" {
		return s.profile.Version
	}
	return version.Version
}
