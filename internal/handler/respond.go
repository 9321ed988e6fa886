package handler

import (
	"errors"
	"net/http"

	"tablepick/internal/service"
	"tablepick/pkg/hotpepper"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps service errors to HTTP statuses: lookups to 404,
// validation to 400, authorization to 403, idempotency conflicts to
// 409, directory failures to 502.
func respondError(c *gin.Context, err error) {
	var searchErr *hotpepper.SearchError
	if errors.As(err, &searchErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "restaurant search is currently unavailable"})
		return
	}
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrCandidateNotFound),
		errors.Is(err, service.ErrRecommendationNotFound),
		errors.Is(err, service.ErrInterviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidVoteType),
		errors.Is(err, service.ErrInterviewNotInProgress),
		errors.Is(err, service.ErrInterviewCompleted),
		errors.Is(err, service.ErrInterviewsIncomplete),
		errors.Is(err, service.ErrNoPreferences):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrNotHost):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRecommendationExists),
		errors.Is(err, gorm.ErrDuplicatedKey):
		// Duplicate-key conflicts that survive the service retry loop
		// surface as conflicts, never as internal errors.
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting update, retry the request"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
