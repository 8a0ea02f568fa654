package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/lazyload/internal/database/testutil"
)

func TestDatabaseStoreSetGetDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCacheTable())
	store := NewDatabaseStore(db)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "user:1")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "user:1", []byte("first"), 0))
	require.NoError(t, store.Set(ctx, "user:1", []byte("second"), 0))

	value, found, err := store.Get(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("second"), value)

	require.NoError(t, store.Delete(ctx, "user:1"))
	_, found, err = store.Get(ctx, "user:1")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Ping(ctx))
}

func TestDatabaseStoreExpiresEntries(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCacheTable())
	store := NewDatabaseStore(db)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "user:9", []byte("payload"), time.Minute))

	_, found, err := store.Get(ctx, "user:9")
	require.NoError(t, err)
	require.True(t, found)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, found, err = store.Get(ctx, "user:9")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDatabaseStoreReportsBackendErrors(t *testing.T) {
	// no cache table: every lookup is a backend failure rather than a miss
	db := testutil.MustOpenTestDB(t)
	store := NewDatabaseStore(db)

	_, found, err := store.Get(context.Background(), "user:1")
	require.Error(t, err)
	require.False(t, found)
}

func TestNilDatabaseStore(t *testing.T) {
	require.Nil(t, NewDatabaseStore(nil))

	var store *DatabaseStore
	_, _, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	require.Error(t, store.Set(context.Background(), "k", nil, 0))
	require.Error(t, store.Delete(context.Background(), "k"))
}
