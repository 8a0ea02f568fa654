package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/lazyload/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist in the durable store.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrUserExists is returned when inserting a user whose id is already taken.
	ErrUserExists = apperrors.New("USER_EXISTS", "User already exists", http.StatusConflict)
	// ErrUserCacheCorrupt reports a cached payload that could not be decoded. The entry is left as is.
	ErrUserCacheCorrupt = apperrors.New("USER_CACHE_CORRUPT", "Cached user payload is corrupt", http.StatusInternalServerError)
	// ErrUserCachePopulate is surfaced only by strict loaders when the cache write after a store hit fails.
	ErrUserCachePopulate = apperrors.New("USER_CACHE_POPULATE_FAILED", "Failed to populate user cache", http.StatusInternalServerError)
	// ErrUserPayloadInvalid wraps codec decode failures.
	ErrUserPayloadInvalid = errors.New("invalid user payload")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate")
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
