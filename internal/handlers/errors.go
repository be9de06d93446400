package handlers

import (
	"errors"
	"net/http"

	"brewing_control/internal/control"
	"brewing_control/internal/repository"
	"brewing_control/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidBodyPref = "invalid body: "
	errInternal        = "internal error"
	errUnavailable     = "engine is not running"
)

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, control.ErrInvalidRecipe),
		errors.Is(err, control.ErrInvalidGoals),
		errors.Is(err, control.ErrIndexOutOfRange),
		errors.Is(err, control.ErrUnknownCommand),
		errors.Is(err, service.ErrEmptyUsername),
		errors.Is(err, service.ErrEmptyPassword),
		errors.Is(err, service.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.Is(err, control.ErrInvalidTransition),
		errors.Is(err, repository.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, control.ErrEngineStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondError picks the status from err. Client errors carry the error text;
// server errors get a generic message.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := statusFor(err)
	msg := err.Error()
	switch code {
	case http.StatusInternalServerError:
		msg = errInternal
	case http.StatusServiceUnavailable:
		msg = errUnavailable
	}
	h.logAndJSONError(c, code, msg, logKey, err, kv...)
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	if h.log != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
}
