package handlers

import (
	"errors"
	"net/http"

	"PMS-FORMS/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// writeError maps the service error vocabulary onto HTTP responses in one
// place so every handler reports failures the same way.
func writeError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	var renderErr *apperrors.RenderError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": validationErr.Violations})
	case errors.Is(err, apperrors.ErrDuplicateKey),
		errors.Is(err, apperrors.ErrNoPublishedVersion),
		errors.Is(err, apperrors.ErrInvalidFieldSchema):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrTemplateNotFound),
		errors.Is(err, apperrors.ErrVersionNotFound),
		errors.Is(err, apperrors.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRenderTimeout), errors.As(err, &renderErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
