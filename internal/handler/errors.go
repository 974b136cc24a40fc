package handler

import (
	"errors"
	"net/http"

	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/BloggingApp/comment-service/internal/service"
	"github.com/gin-gonic/gin"
)

var (
	errNotAuthorized = errors.New("user is not authorized")
	errNoAccess      = errors.New("no access")
	errInvalidID     = errors.New("invalid ID")
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidParent),
		errors.Is(err, service.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrDuplicateReport):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		err = service.ErrInternal
	}
	c.JSON(status, dto.NewErrorResponse(err))
}
