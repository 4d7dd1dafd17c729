package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/docstore"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, docstore.ErrValidation), errors.Is(err, docstore.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, docstore.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": "...", "details": [...]}.
func (s *server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	if details, ok := docstore.ValidationDetails(err); ok {
		body["details"] = details
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request error",
			zap.String(requestIDKey, c.GetString(requestIDKey)), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}
