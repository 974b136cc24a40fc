package handler

import (
	"net/http"

	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/BloggingApp/comment-service/pkg/utils"
	"github.com/gin-gonic/gin"
)

// authenticate resolves the caller from the bearer token and stores it on the context.
func (h *Handler) authenticate(c *gin.Context) bool {
	accessToken := bearerToken(c)
	if accessToken == "" {
		return false
	}

	claims, err := utils.DecodeJWT(accessToken, h.accessSecret)
	if err != nil {
		return false
	}

	actor, err := actorFromClaims(claims)
	if err != nil {
		return false
	}

	h.ensureCachedUser(c.Request.Context(), actor, accessToken)

	c.Set(actorKey, actor)
	return true
}

func (h *Handler) authMiddleware(c *gin.Context) {
	if !h.authenticate(c) {
		c.JSON(http.StatusUnauthorized, dto.NewBasicResponse(false, errNotAuthorized.Error()))
		c.Abort()
		return
	}

	c.Next()
}
