package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/lazyload/pkg/errors"
)

// RequestIDKey is the gin context key holding the request identifier echoed in responses.
const RequestIDKey = "request_id"

// Response is the envelope every API endpoint renders.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorInfo holds the client-facing part of an AppError.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success:   true,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Error renders err as an AppError. Internal causes are attached to the gin context for
// the access log and never rendered.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		appErr = appErrors.ErrInternalServer
	}
	if appErr.Internal != nil {
		_ = c.Error(appErr.Internal)
	}

	c.JSON(appErr.Status(), Response{
		Success:   false,
		Error:     &ErrorInfo{Code: appErr.Code, Message: appErr.Message},
		RequestID: c.GetString(RequestIDKey),
	})
}
