package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payload := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", payload, 0))
	payload[0] = 'z'

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("abc"), value)

	value[1] = 'z'
	again, _, _ := store.Get(ctx, "k")
	require.Equal(t, []byte("abc"), again)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.clock = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Second))
	require.NoError(t, store.Set(ctx, "forever", []byte("v"), 0))

	store.clock = func() time.Time { return now.Add(time.Hour) }
	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = store.Get(ctx, "forever")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, store.Len())
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, store.Delete(ctx, "a", "missing"))
	require.Equal(t, 1, store.Len())
	require.NoError(t, store.Ping(ctx))
}
