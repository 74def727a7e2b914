package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/dto"
	"github.com/wellamo/mobile-bff/internal/service"
)

// statusForError maps service sentinel errors onto HTTP statuses
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, "Bad Request"
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "Too Many Requests"
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "Bad Gateway"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// errorResponder renders service errors uniformly. Error details leave the
// process only outside production.
type errorResponder struct {
	env    string
	logger *zap.Logger
}

func newErrorResponder(env string, logger *zap.Logger) errorResponder {
	return errorResponder{env: env, logger: logger}
}

func (r errorResponder) respond(c *gin.Context, err error) {
	status, label := statusForError(err)

	if status >= http.StatusInternalServerError {
		r.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}

	resp := dto.ErrorResponse{Error: label}
	if r.env != "production" {
		resp.Details = err.Error()
	}

	c.JSON(status, resp)
}
