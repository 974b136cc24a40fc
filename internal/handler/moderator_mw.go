package handler

import (
	"net/http"

	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) moderatorMiddleware(c *gin.Context) {
	if !h.authenticate(c) {
		c.JSON(http.StatusUnauthorized, dto.NewBasicResponse(false, errNotAuthorized.Error()))
		c.Abort()
		return
	}

	if !h.getActor(c).IsAdmin {
		c.JSON(http.StatusForbidden, dto.NewBasicResponse(false, errNoAccess.Error()))
		c.Abort()
		return
	}

	c.Next()
}
