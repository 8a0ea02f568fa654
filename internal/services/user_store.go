package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/charlesng35/lazyload/internal/models"
	apperrors "github.com/charlesng35/lazyload/pkg/errors"
)

// UserStore is the durable source of truth for users.
type UserStore interface {
	// FindByID returns the user with the given id or ErrUserNotFound.
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// Insert adds a user row. It is used by bootstrap seeding, never by the read path.
	Insert(ctx context.Context, id int64, name string) (*models.User, error)
}

// GormUserStore implements UserStore on top of gorm.
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore constructs a GormUserStore instance.
func NewGormUserStore(db *gorm.DB) (*GormUserStore, error) {
	if db == nil {
		return nil, errors.New("user store: db is required")
	}
	return &GormUserStore{db: db}, nil
}

// FindByID loads a single user by primary key.
func (s *GormUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user store: find user %d: %w", id, err)
	}
	return &user, nil
}

// Insert creates a user with an explicit id. The name is stored exactly as given, so
// names with surrounding whitespace or invalid UTF-8 are rejected rather than rewritten.
func (s *GormUserStore) Insert(ctx context.Context, id int64, name string) (*models.User, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if strings.TrimSpace(name) != name {
		return nil, apperrors.NewBadRequest("name must not have leading or trailing whitespace")
	}
	if !utf8.ValidString(name) {
		return nil, apperrors.NewBadRequest("name must be valid UTF-8")
	}
	if utf8.RuneCountInString(name) > models.MaxUserNameLength {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("name must be at most %d characters", models.MaxUserNameLength))
	}

	user := &models.User{ID: id, Name: name}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUserExists.WithInternal(err)
		}
		return nil, fmt.Errorf("user store: insert user %d: %w", id, err)
	}
	return user, nil
}
