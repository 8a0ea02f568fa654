package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/lazyload/internal/cache"
	"github.com/charlesng35/lazyload/internal/models"
	"github.com/charlesng35/lazyload/internal/monitoring"
	"github.com/charlesng35/lazyload/pkg/logger"
)

// DefaultUserKeyPrefix namespaces user entries inside the cache.
const DefaultUserKeyPrefix = "user:"

// UserLoaderOption customises a UserLoader.
type UserLoaderOption func(*UserLoader)

// WithCodec overrides the payload codec. Defaults to JSONUserCodec.
func WithCodec(codec UserCodec) UserLoaderOption {
	return func(l *UserLoader) {
		if codec != nil {
			l.codec = codec
		}
	}
}

// WithKeyPrefix overrides the prefix prepended to the decimal user id.
func WithKeyPrefix(prefix string) UserLoaderOption {
	return func(l *UserLoader) {
		l.keyPrefix = strings.TrimSpace(prefix)
	}
}

// WithLogger overrides the logger. Defaults to the "loader" module logger.
func WithLogger(log *zap.Logger) UserLoaderOption {
	return func(l *UserLoader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithStrictPopulate makes cache write failures after a store hit fail the load with
// ErrUserCachePopulate instead of being logged and swallowed.
func WithStrictPopulate(strict bool) UserLoaderOption {
	return func(l *UserLoader) {
		l.strictPopulate = strict
	}
}

// UserLoader reads users through the cache, falling back to the durable store on a miss
// and populating the cache with what it found. It holds no locks and never retries.
type UserLoader struct {
	store          UserStore
	cache          cache.Store
	codec          UserCodec
	keyPrefix      string
	strictPopulate bool
	log            *zap.Logger
}

// NewUserLoader constructs a UserLoader.
func NewUserLoader(store UserStore, cacheStore cache.Store, opts ...UserLoaderOption) (*UserLoader, error) {
	if store == nil {
		return nil, errors.New("user loader: store is required")
	}
	if cacheStore == nil {
		return nil, errors.New("user loader: cache is required")
	}

	loader := &UserLoader{
		store:     store,
		cache:     cacheStore,
		codec:     JSONUserCodec{},
		keyPrefix: DefaultUserKeyPrefix,
		log:       logger.WithModule("loader"),
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader, nil
}

// CacheKey returns the cache key used for the given user id.
func (l *UserLoader) CacheKey(id int64) string {
	return l.keyPrefix + strconv.FormatInt(id, 10)
}

// Load returns the user with the given id, consulting the cache first.
func (l *UserLoader) Load(ctx context.Context, id int64) (*models.User, error) {
	ctx = ensureContext(ctx)
	start := time.Now()
	key := l.CacheKey(id)

	payload, found, err := l.cache.Get(ctx, key)
	switch {
	case err != nil:
		monitoring.RecordCacheLookup(monitoring.LookupError)
		l.log.Warn("cache lookup failed, falling back to store",
			zap.Int64("user_id", id),
			zap.String("key", key),
			zap.Error(err),
		)
	case !found:
		monitoring.RecordCacheLookup(monitoring.LookupMiss)
		l.log.Debug("cache miss", zap.Int64("user_id", id), zap.String("key", key))
	default:
		user, decodeErr := l.codec.Decode(payload)
		if decodeErr != nil {
			monitoring.RecordCacheLookup(monitoring.LookupCorrupt)
			monitoring.ObserveLoad(monitoring.SourceNone, time.Since(start))
			l.log.Error("cached user payload is corrupt",
				zap.Int64("user_id", id),
				zap.String("key", key),
				zap.Error(decodeErr),
			)
			return nil, ErrUserCacheCorrupt.WithInternal(decodeErr)
		}
		monitoring.RecordCacheLookup(monitoring.LookupHit)
		monitoring.ObserveLoad(monitoring.SourceCache, time.Since(start))
		return user, nil
	}

	user, err := l.store.FindByID(ctx, id)
	if err != nil {
		monitoring.ObserveLoad(monitoring.SourceNone, time.Since(start))
		if errors.Is(err, ErrUserNotFound) {
			monitoring.RecordStoreQuery(monitoring.QueryNotFound)
			return nil, err
		}
		monitoring.RecordStoreQuery(monitoring.QueryError)
		l.log.Error("store lookup failed", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}
	monitoring.RecordStoreQuery(monitoring.QueryFound)

	if err := l.populate(ctx, key, user); err != nil {
		monitoring.RecordCachePopulate(monitoring.PopulateFailure, err.Error())
		if l.strictPopulate {
			monitoring.ObserveLoad(monitoring.SourceNone, time.Since(start))
			l.log.Error("cache populate failed", zap.Int64("user_id", id), zap.String("key", key), zap.Error(err))
			return nil, ErrUserCachePopulate.WithInternal(err)
		}
		l.log.Warn("cache populate failed, returning user from store",
			zap.Int64("user_id", id),
			zap.String("key", key),
			zap.Error(err),
		)
	} else {
		monitoring.RecordCachePopulate(monitoring.PopulateSuccess, "")
	}

	monitoring.ObserveLoad(monitoring.SourceStore, time.Since(start))
	return user, nil
}

func (l *UserLoader) populate(ctx context.Context, key string, user *models.User) error {
	payload, err := l.codec.Encode(user)
	if err != nil {
		return err
	}
	return l.cache.Set(ctx, key, payload, 0)
}
