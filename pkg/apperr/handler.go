package apperr

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/proveritus/estatecloud/pkg/logger"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Errors    []string  `json:"errors,omitempty"`
}

// statusFor maps an error kind to its HTTP status code.
func statusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalid, KindDuplicate:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler returns an Echo error handler that renders application
// errors as ErrorResponse bodies with the mapped status code.
func HTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		log := logger.FromEcho(c)

		status := http.StatusInternalServerError
		message := "internal server error"
		var details []string

		var appErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = statusFor(appErr.Kind)
			message = appErr.Message
			details = appErr.Details
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(httpErr.Code)
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
		} else {
			log.Warn("request rejected",
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.String("message", message),
			)
		}

		resp := ErrorResponse{
			Timestamp: time.Now().UTC(),
			Status:    status,
			Message:   message,
			Errors:    details,
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}
