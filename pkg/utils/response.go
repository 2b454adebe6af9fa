package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "quipus-system/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// sentinelStatus maps the auth sentinel errors onto HTTP statuses; typed
// service errors already carry their own code.
var sentinelStatus = map[error]int{
	apperrors.ErrEmptyAuthHeader:    http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader:  http.StatusUnauthorized,
	apperrors.ErrInvalidToken:       http.StatusUnauthorized,
	apperrors.ErrTokenExpired:       http.StatusUnauthorized,
	apperrors.ErrTokenIsNotAccess:   http.StatusUnauthorized,
	apperrors.ErrTokenIsNotRefresh:  http.StatusUnauthorized,
	apperrors.ErrInvalidCredentials: http.StatusUnauthorized,
	apperrors.ErrUnauthorized:       http.StatusUnauthorized,
	apperrors.ErrForbidden:          http.StatusForbidden,
}

func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	code := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = httpErr.Message
		if httpErr.Err != nil {
			if code >= http.StatusInternalServerError {
				logger.Error("request failed", zap.Int("code", code), zap.Error(httpErr.Err))
			} else {
				logger.Warn("request rejected", zap.Int("code", code), zap.Error(httpErr.Err))
			}
		}
	} else {
		for sentinel, status := range sentinelStatus {
			if errors.Is(err, sentinel) {
				code = status
				message = sentinel.Error()
				break
			}
		}
		if code == http.StatusInternalServerError {
			logger.Error("unexpected error", zap.Error(err))
		}
	}

	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Message: message,
	})
}
