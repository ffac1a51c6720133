package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
)

const CodeValidation = "VALIDATION_ERROR"

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// bindJSON decodes the body and answers 400 with a field list when binding
// tags fail. It reports whether the handler may continue.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{
				Field:   jsonName(fe),
				Message: tagMessage(fe),
			})
		}
		httperr.FromError(c, httperr.Validation(CodeValidation, "request validation failed").
			WithDetails(map[string]any{"fields": fields}))
		return
	}
	httperr.BadRequest(c, CodeValidation, "request body must be valid JSON")
}

func jsonName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" {
		return name
	}
	return strings.ToLower(fe.StructField())
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "hhmm":
		return "must be HH:MM"
	case "kephone":
		return "must be a Kenyan phone number"
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "is invalid"
}

// paramID parses :id, answering 400 on failure.
func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, CodeValidation, name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return min(limit, maxPageSize)
}
