package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/snapshot"
)

// ErrorJSON is the body of every error response.
type ErrorJSON struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// statusFor maps manager errors to HTTP statuses.
func statusFor(err error) int {
	var saveErr *snapshot.SaveError
	switch {
	case errors.As(err, &saveErr):
		return http.StatusInternalServerError
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrTimeIntersection):
		return http.StatusNotAcceptable
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, tag string, err error) {
	status := statusFor(err)
	log.Printf("[api]%s[err] request=%s status=%d %v", tag, c.GetString(requestIDKey), status, err)
	c.JSON(status, ErrorJSON{
		Title:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

func badRequest(c *gin.Context, tag string, err error) {
	log.Printf("[api]%s[bind][err] request=%s %v", tag, c.GetString(requestIDKey), err)
	c.JSON(http.StatusBadRequest, ErrorJSON{
		Title:   http.StatusText(http.StatusBadRequest),
		Message: err.Error(),
		Code:    http.StatusBadRequest,
	})
}
