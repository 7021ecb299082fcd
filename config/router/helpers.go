package router

import (
	"net/http"

	"github.com/akeren/logfox/internal/log"
	apperrors "github.com/akeren/logfox/pkg/errors"
	"github.com/google/uuid"
)

// GetLogger returns the correlated logger injected by the router, or a fresh
// one when the handler runs outside the middleware chain.
func GetLogger(ctx *RequestContext) *log.Logger {
	if l, ok := ctx.Request.Context().Value(log.LoggerKeyForContext).(*log.Logger); ok {
		return l
	}

	return log.NewLoggerWithJSONOutput().WithCorrelationID(ctx.Request.Context())
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	}
}

func OKResult(data any, message string) *ServiceResult {
	return ErrorResult(http.StatusOK, message, data)
}

func CreatedResult(data any, resourceName string) *ServiceResult {
	return ErrorResult(http.StatusCreated, resourceName+" created successfully", data)
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return ErrorResult(http.StatusTooManyRequests, "Too Many Requests", data)
}

func BadRequestResult(message string, payload any) *ServiceResult {
	return ErrorResult(http.StatusBadRequest, message, payload)
}

func NotFoundResult(message string) *ServiceResult {
	return ErrorResult(http.StatusNotFound, message, nil)
}

func InternalServerErrorResult(message string) *ServiceResult {
	return ErrorResult(http.StatusInternalServerError, message, nil)
}

// AppErrorResult maps an error to its status code and client-safe message.
func AppErrorResult(err error) *ServiceResult {
	return ErrorResult(
		apperrors.HTTPStatusCode(err),
		apperrors.GetHumanReadableMessage(err),
		nil,
	)
}

// ParseUUIDParam reads a path parameter that must be a UUID and returns it in
// canonical lowercase form.
func ParseUUIDParam(ctx *RequestContext, paramName string) (string, *ServiceResult) {
	raw := ctx.Param(paramName)

	id, err := uuid.Parse(raw)
	if err != nil {
		GetLogger(ctx).Warn("Invalid ID parameter", "param", paramName, "value", raw, "error", err)
		return "", BadRequestResult("Invalid ID parameter", nil)
	}

	return id.String(), nil
}
