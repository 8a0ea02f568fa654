package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/charlesng35/lazyload/internal/cache"
	"github.com/charlesng35/lazyload/internal/models"
)

type stubUserStore struct {
	mu    sync.Mutex
	users map[int64]models.User
	err   error
	calls atomic.Int64
}

func newStubUserStore(users ...models.User) *stubUserStore {
	store := &stubUserStore{users: make(map[int64]models.User, len(users))}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (s *stubUserStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *stubUserStore) Insert(_ context.Context, id int64, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; ok {
		return nil, ErrUserExists
	}
	s.users[id] = models.User{ID: id, Name: name}
	return &models.User{ID: id, Name: name}, nil
}

// panicUserStore fails the test if the loader touches the durable store.
type panicUserStore struct {
	t *testing.T
}

func (s panicUserStore) FindByID(context.Context, int64) (*models.User, error) {
	s.t.Fatal("store must not be consulted")
	return nil, nil
}

func (s panicUserStore) Insert(context.Context, int64, string) (*models.User, error) {
	s.t.Fatal("store must not be written")
	return nil, nil
}

type faultyCache struct {
	*cache.MemoryStore
	getErr error
	setErr error
	sets   atomic.Int64
}

func (c *faultyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.MemoryStore.Get(ctx, key)
}

func (c *faultyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.sets.Add(1)
	if c.setErr != nil {
		return c.setErr
	}
	return c.MemoryStore.Set(ctx, key, value, ttl)
}

func newObservedLoader(t *testing.T, store UserStore, cacheStore cache.Store, opts ...UserLoaderOption) (*UserLoader, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]UserLoaderOption{WithLogger(zap.New(core))}, opts...)
	loader, err := NewUserLoader(store, cacheStore, opts...)
	require.NoError(t, err)
	return loader, logs
}

func TestNewUserLoaderRequiresCollaborators(t *testing.T) {
	_, err := NewUserLoader(nil, cache.NewMemoryStore())
	require.Error(t, err)

	_, err = NewUserLoader(newStubUserStore(), nil)
	require.Error(t, err)
}

func TestUserLoaderCacheKey(t *testing.T) {
	loader, err := NewUserLoader(newStubUserStore(), cache.NewMemoryStore())
	require.NoError(t, err)
	require.Equal(t, "user:42", loader.CacheKey(42))

	loader, err = NewUserLoader(newStubUserStore(), cache.NewMemoryStore(), WithKeyPrefix(""))
	require.NoError(t, err)
	require.Equal(t, "1", loader.CacheKey(1))
}

func TestUserLoaderCacheHitSkipsStore(t *testing.T) {
	ctx := context.Background()
	memory := cache.NewMemoryStore()
	loader, _ := newObservedLoader(t, panicUserStore{t: t}, memory)

	payload, err := JSONUserCodec{}.Encode(&models.User{ID: 1, Name: "Pavan"})
	require.NoError(t, err)
	require.NoError(t, memory.Set(ctx, loader.CacheKey(1), payload, 0))

	user, err := loader.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, &models.User{ID: 1, Name: "Pavan"}, user)
}

func TestUserLoaderMissPopulatesCache(t *testing.T) {
	ctx := context.Background()
	store := newStubUserStore(models.User{ID: 1, Name: "Pavan"})
	memory := cache.NewMemoryStore()
	loader, logs := newObservedLoader(t, store, memory)

	user, err := loader.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Pavan", user.Name)
	require.Equal(t, int64(1), store.calls.Load())

	payload, found, err := memory.Get(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"id":1,"name":"Pavan"}`, string(payload))
	require.Equal(t, 1, logs.FilterMessage("cache miss").Len())

	again, err := loader.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, user, again)
	require.Equal(t, int64(1), store.calls.Load())
}

func TestUserLoaderNotFoundLeavesCacheEmpty(t *testing.T) {
	ctx := context.Background()
	memory := cache.NewMemoryStore()
	loader, _ := newObservedLoader(t, newStubUserStore(), memory)

	user, err := loader.Load(ctx, 7)
	require.Nil(t, user)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.Zero(t, memory.Len())
}

func TestUserLoaderCorruptEntryIsFatal(t *testing.T) {
	ctx := context.Background()
	memory := cache.NewMemoryStore()
	loader, logs := newObservedLoader(t, panicUserStore{t: t}, memory)

	require.NoError(t, memory.Set(ctx, loader.CacheKey(3), []byte("{not json"), 0))

	user, err := loader.Load(ctx, 3)
	require.Nil(t, user)
	require.ErrorIs(t, err, ErrUserCacheCorrupt)
	require.ErrorIs(t, err, ErrUserPayloadInvalid)
	require.Equal(t, 1, logs.FilterMessage("cached user payload is corrupt").Len())

	payload, found, err := memory.Get(ctx, loader.CacheKey(3))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "{not json", string(payload))
}

func TestUserLoaderCacheErrorFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := newStubUserStore(models.User{ID: 1, Name: "Pavan"})
	faulty := &faultyCache{MemoryStore: cache.NewMemoryStore(), getErr: errors.New("connection refused")}
	loader, logs := newObservedLoader(t, store, faulty)

	user, err := loader.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Pavan", user.Name)
	require.Equal(t, int64(1), store.calls.Load())
	require.Equal(t, int64(1), faulty.sets.Load())

	warnings := logs.FilterMessage("cache lookup failed, falling back to store")
	require.Equal(t, 1, warnings.Len())
	require.Zero(t, logs.FilterMessage("cache miss").Len())
}

func TestUserLoaderStoreErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	store := newStubUserStore()
	store.err = errors.New("database is locked")
	memory := cache.NewMemoryStore()
	loader, _ := newObservedLoader(t, store, memory)

	_, err := loader.Load(ctx, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "database is locked")
	require.NotErrorIs(t, err, ErrUserNotFound)
	require.Zero(t, memory.Len())
}

func TestUserLoaderPopulateFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	store := newStubUserStore(models.User{ID: 1, Name: "Pavan"})
	faulty := &faultyCache{MemoryStore: cache.NewMemoryStore(), setErr: errors.New("READONLY replica")}
	loader, logs := newObservedLoader(t, store, faulty)

	user, err := loader.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Pavan", user.Name)
	require.Equal(t, 1, logs.FilterMessage("cache populate failed, returning user from store").Len())
}

func TestUserLoaderStrictPopulateSurfacesFailure(t *testing.T) {
	ctx := context.Background()
	store := newStubUserStore(models.User{ID: 1, Name: "Pavan"})
	faulty := &faultyCache{MemoryStore: cache.NewMemoryStore(), setErr: errors.New("READONLY replica")}
	loader, _ := newObservedLoader(t, store, faulty, WithStrictPopulate(true))

	user, err := loader.Load(ctx, 1)
	require.Nil(t, user)
	require.ErrorIs(t, err, ErrUserCachePopulate)
	require.Contains(t, err.Error(), "READONLY replica")
}

// gatedUserStore holds every FindByID until all expected callers have arrived, so each
// of them must have missed the cache before any populate happens.
type gatedUserStore struct {
	*stubUserStore
	arrived *sync.WaitGroup
}

func (s gatedUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	s.arrived.Done()
	s.arrived.Wait()
	return s.stubUserStore.FindByID(ctx, id)
}

func TestUserLoaderConcurrentColdLoads(t *testing.T) {
	ctx := context.Background()
	const workers = 8

	var arrived sync.WaitGroup
	arrived.Add(workers)
	stub := newStubUserStore(models.User{ID: 9, Name: "Concurrent"})
	store := gatedUserStore{stubUserStore: stub, arrived: &arrived}
	cacheStore := &faultyCache{MemoryStore: cache.NewMemoryStore()}
	loader, logs := newObservedLoader(t, store, cacheStore)

	var wg sync.WaitGroup
	results := make([]*models.User, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = loader.Load(ctx, 9)
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent loads did not all reach the store")
	}

	want := &models.User{ID: 9, Name: "Concurrent"}
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, want, results[i])
	}
	require.Equal(t, int64(workers), stub.calls.Load())
	require.Equal(t, int64(workers), cacheStore.sets.Load())
	require.Equal(t, workers, logs.FilterMessage("cache miss").Len())

	payload, found, err := cacheStore.Get(ctx, loader.CacheKey(9))
	require.NoError(t, err)
	require.True(t, found)
	expected, err := JSONUserCodec{}.Encode(want)
	require.NoError(t, err)
	require.Equal(t, expected, payload)
}

func TestUserLoaderInvalidUTF8NameIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := newStubUserStore(models.User{ID: 4, Name: "a\xffb"})
	cacheStore := &faultyCache{MemoryStore: cache.NewMemoryStore()}
	loader, _ := newObservedLoader(t, store, cacheStore)

	user, err := loader.Load(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, "a\xffb", user.Name)
	require.Equal(t, int64(0), cacheStore.sets.Load())

	_, found, err := cacheStore.Get(ctx, loader.CacheKey(4))
	require.NoError(t, err)
	require.False(t, found)
}

func TestUserLoaderWithGormStore(t *testing.T) {
	ctx := context.Background()
	db := openUserStoreTestDB(t, models.User{ID: 1, Name: "Pavan"})
	store, err := NewGormUserStore(db)
	require.NoError(t, err)

	memory := cache.NewMemoryStore()
	loader, err := NewUserLoader(store, memory, WithKeyPrefix("u:"))
	require.NoError(t, err)

	user, err := loader.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Pavan", user.Name)

	_, found, err := memory.Get(ctx, "u:1")
	require.NoError(t, err)
	require.True(t, found)

	_, err = loader.Load(ctx, 2)
	require.ErrorIs(t, err, ErrUserNotFound)
}
