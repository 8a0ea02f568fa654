package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/lazyload/internal/models"
	appErrors "github.com/charlesng35/lazyload/pkg/errors"
	"github.com/charlesng35/lazyload/pkg/response"
	appValidator "github.com/charlesng35/lazyload/pkg/validator"
)

// UserReader loads a single user by id.
type UserReader interface {
	Load(ctx context.Context, id int64) (*models.User, error)
}

type UserHandler struct {
	users UserReader
}

func NewUserHandler(users UserReader) (*UserHandler, error) {
	if users == nil {
		return nil, errors.New("user handler: loader is required")
	}
	return &UserHandler{users: users}, nil
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.users.Load(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func parseUserID(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("id must be an integer"))
		return 0, false
	}
	if err := appValidator.ValidateVar("id", id, "gt=0"); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return 0, false
	}
	return id, true
}
