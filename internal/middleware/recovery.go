package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/charlesng35/lazyload/pkg/errors"
	"github.com/charlesng35/lazyload/pkg/logger"
	"github.com/charlesng35/lazyload/pkg/response"
)

// Recovery turns a panicking handler into a 500 envelope. The panic value is logged with
// the request id and never rendered.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			logger.WithModule("http").Error("handler panicked",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.Any("panic", recovered),
				zap.StackSkip("stack", 2),
			)
			if !c.Writer.Written() {
				response.Error(c, appErrors.ErrInternalServer)
			}
			c.Abort()
		}()
		c.Next()
	}
}

// NotFoundHandler renders unknown routes with the standard envelope.
func NotFoundHandler(c *gin.Context) {
	message := fmt.Sprintf("route %s not found", c.Request.URL.Path)
	response.Error(c, appErrors.ErrNotFound.WithMessage(message))
}
