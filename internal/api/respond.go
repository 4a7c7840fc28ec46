// ABOUTME: JSON response helpers and storage error to HTTP status mapping.
// ABOUTME: Every handler reports failures through fail.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/fitcentre/internal/storage"
)

// errBadRequest marks input the handler itself rejected before reaching storage.
var errBadRequest = errors.New("bad request")

// statusFor maps a storage error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, storage.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConstraint):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func respondDeleted(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
