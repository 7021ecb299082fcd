package errors

import (
	"errors"
)

const genericClientMessage = "An unexpected error occurred"

var statusByType = map[string]int{
	ErrorTypeNotFound:          StatusNotFound,
	ErrorTypeInvalidRequest:    StatusBadRequest,
	ErrorTypeConflict:          StatusConflict,
	ErrorTypeExpired:           StatusGone,
	ErrorTypeTooManyRequests:   StatusTooManyRequests,
	ErrorTypeRateLimitExceeded: StatusTooManyRequests,
	ErrorTypeRequestTimeout:    StatusRequestTimeout,
	ErrorTypeMethodNotAllowed:  StatusMethodNotAllowed,
	ErrorTypeUnavailable:       StatusServiceUnavailable,
}

// HTTPStatusCode maps err to a response status. Anything that is not a typed
// AppError is a 500.
func HTTPStatusCode(err error) int {
	if status, ok := statusByType[GetErrorType(err)]; ok {
		return status
	}
	return StatusInternalServerError
}

// GetHumanReadableMessage returns the AppError message or a generic one. Raw
// error strings never reach the browser.
func GetHumanReadableMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return genericClientMessage
}
