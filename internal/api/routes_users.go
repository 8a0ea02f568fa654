package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/lazyload/internal/handlers"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler) {
	users := api.Group("/users")
	{
		users.GET("/:id", handler.Get)
	}
}
