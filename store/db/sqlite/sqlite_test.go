package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/linguapet/internal/profile"
	"github.com/hrygo/linguapet/store"
)

func newTestDB(t *testing.T) store.Driver {
	t.Helper()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "linguapet_test.db"),
	}
	driver, err := NewDB(p)
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close() })
	require.NoError(t, driver.Migrate(context.Background()))
	return driver
}

func TestNewDB_RequiresDSN(t *testing.T) {
	_, err := NewDB(&profile.Profile{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestKeyValue_RoundTrip(t *testing.T) {
	ctx := context.Background()
	driver := newTestDB(t)

	kv, err := driver.GetKeyValue(ctx, &store.FindKeyValue{Key: "brain.learned"})
	require.NoError(t, err)
	assert.Nil(t, kv)

	_, err = driver.UpsertKeyValue(ctx, &store.UpsertKeyValue{Key: "brain.learned", Value: `{"天气":"cuaca"}`})
	require.NoError(t, err)
	_, err = driver.UpsertKeyValue(ctx, &store.UpsertKeyValue{Key: "brain.learned", Value: `{"天气":"hujan"}`})
	require.NoError(t, err)

	kv, err = driver.GetKeyValue(ctx, &store.FindKeyValue{Key: "brain.learned"})
	require.NoError(t, err)
	require.NotNil(t, kv)
	assert.Equal(t, `{"天气":"hujan"}`, kv.Value)
	assert.NotZero(t, kv.UpdatedTs)
}

func TestListKeyValues(t *testing.T) {
	ctx := context.Background()
	driver := newTestDB(t)

	for _, key := range []string{"brain.topics", "brain.notes"} {
		_, err := driver.UpsertKeyValue(ctx, &store.UpsertKeyValue{Key: key, Value: "x"})
		require.NoError(t, err)
	}

	list, err := driver.ListKeyValues(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "brain.notes", list[0].Key)
	assert.Equal(t, "brain.topics", list[1].Key)
}

func TestMigrateIsIdempotent(t *testing.T) {
	driver := newTestDB(t)
	assert.NoError(t, driver.Migrate(context.Background()))
}

func TestStoreAdapter(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t), &profile.Profile{})

	_, ok, err := s.Get(ctx, "brain.notes")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "brain.notes", `["hello"]`))
	value, ok, err := s.Get(ctx, "brain.notes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["hello"]`, value)
}
