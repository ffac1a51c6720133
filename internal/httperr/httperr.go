package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/housecall-booking/internal/logger"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// FromError writes the response for any error coming out of a use case.
func FromError(c *gin.Context, err error) {
	if be, ok := AsBusiness(err); ok {
		c.JSON(be.Kind.Status(), HTTPError{
			Code:    be.Code,
			Message: be.Message,
			Details: be.Details,
		})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "NOT_FOUND", "resource not found")
		return
	}

	logger.WithContext(c.Request.Context()).Error("unexpected error",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	Internal(c, "INTERNAL_ERROR", "unexpected error")
}
