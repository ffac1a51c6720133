package httperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindNotFound
	KindCapacity
	KindUnexpected
)

// Status maps an error kind to the HTTP status returned to callers.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindCapacity:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Details any
}

func (e BusinessError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// WithDetails returns a copy carrying extra payload for the response body.
func (e BusinessError) WithDetails(details any) BusinessError {
	e.Details = details
	return e
}

func ErrBusiness(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func Validation(code, message string) BusinessError {
	return BusinessError{Kind: KindValidation, Code: code, Message: message}
}

func Conflict(code, message string) BusinessError {
	return BusinessError{Kind: KindConflict, Code: code, Message: message}
}

func NotFoundErr(code, message string) BusinessError {
	return BusinessError{Kind: KindNotFound, Code: code, Message: message}
}

func Capacity(code, message string) BusinessError {
	return BusinessError{Kind: KindCapacity, Code: code, Message: message}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}
