package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	codeValidation = "validation_error"
	codeNotFound   = "not_found"
	codeStore      = "store_error"
)

func respond(c *gin.Context, status int, message string, result interface{}) {
	c.JSON(status, gin.H{"message": message, "result": result})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message, "code": code})
}

// writeError maps domain errors to status codes. Store failures are logged and hidden
// behind a generic message.
func writeError(c *gin.Context, logger *zap.Logger, err error, failure string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, domain.ErrInvalid):
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, notFoundMessage(err))
	default:
		logger.Error(failure,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, codeStore, failure)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrCartNotFound):
		return "Shopping cart not found."
	case errors.Is(err, domain.ErrProductNotFound):
		return "Product not found."
	default:
		return "Not found."
	}
}

func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	respondError(c, http.StatusBadRequest, codeValidation, "invalid request body: "+err.Error())
}

// positiveIntParam parses a path parameter that must be a positive integer.
func positiveIntParam(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Param(name))
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		respondError(c, http.StatusBadRequest, codeValidation, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}
