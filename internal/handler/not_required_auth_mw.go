package handler

import (
	"github.com/gin-gonic/gin"
)

// notRequiredAuthMiddleware identifies the viewer when a valid token is sent and lets anonymous requests through.
func (h *Handler) notRequiredAuthMiddleware(c *gin.Context) {
	h.authenticate(c)
	c.Next()
}
