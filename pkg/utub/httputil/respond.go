// Package httputil maps engine results onto HTTP responses.
package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/utubapp/utub-server/pkg/utub/engine"
)

// Error writes the status code and body for an engine error kind.
func Error(c *gin.Context, err error) {
	var (
		validationErr    *engine.ValidationError
		notFoundErr      *engine.NotFoundError
		authorizationErr *engine.AuthorizationError
		conflictErr      *engine.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &authorizationErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authorizationErr.Reason})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
