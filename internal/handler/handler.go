package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/BloggingApp/comment-service/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const actorKey = "actor"

type Handler struct {
	logger       *zap.Logger
	services     *service.Service
	accessSecret []byte
	gatherer     prometheus.Gatherer
}

func New(logger *zap.Logger, services *service.Service, accessSecret string, gatherer prometheus.Gatherer) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		logger:       logger,
		services:     services,
		accessSecret: []byte(accessSecret),
		gatherer:     gatherer,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if origin := viper.GetString("client.origin"); origin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{origin},
			AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		comments := v1.Group("/comments")
		{
			comments.POST("", h.authMiddleware, h.commentsCreate)
			comments.GET("/article/:articleID", h.notRequiredAuthMiddleware, h.commentsGetByArticle)

			comment := comments.Group("/:commentID")
			{
				comment.GET("", h.notRequiredAuthMiddleware, h.commentsGetByID)
				comment.PATCH("", h.authMiddleware, h.commentsUpdate)
				comment.DELETE("", h.authMiddleware, h.commentsDelete)
				comment.POST("/like", h.authMiddleware, h.commentsLike)
				comment.GET("/isLiked", h.authMiddleware, h.commentsIsLiked)
				comment.POST("/report", h.authMiddleware, h.commentsReport)
			}
		}

		admin := v1.Group("/admin", h.moderatorMiddleware)
		{
			adminComments := admin.Group("/comments")
			{
				adminComments.GET("", h.modGetComments)
				adminComments.PATCH("/moderate-bulk", h.modModerateBulk)
				adminComments.PATCH("/:commentID/moderate", h.modModerateComment)
				adminComments.POST("/:commentID/dismiss-reports", h.modDismissReports)
				adminComments.GET("/:commentID/reports", h.modGetReports)
			}

			admin.GET("/users/:userID/comments", h.modGetUserComments)
		}
	}

	return r
}

// actorFromClaims reads the caller id and role from access token claims.
// The mod and admin roles both grant moderation rights.
func actorFromClaims(claims jwt.MapClaims) (model.Actor, error) {
	idString, ok := claims["id"].(string)
	if !ok {
		return model.Anonymous, errNotAuthorized
	}
	id, err := uuid.Parse(idString)
	if err != nil {
		return model.Anonymous, errNotAuthorized
	}

	role, _ := claims["role"].(string)
	role = strings.ToLower(role)

	return model.Actor{
		ID:      id,
		IsAdmin: role == "mod" || role == "admin",
	}, nil
}

// ensureCachedUser makes sure the caller's display data is cached for comment reads.
// A failure only degrades author display, so the request goes on.
func (h *Handler) ensureCachedUser(ctx context.Context, actor model.Actor, accessToken string) {
	if _, err := h.services.UserCache.CreateOrGet(ctx, actor.ID, accessToken); err != nil {
		h.logger.Sugar().Warnf("failed to cache user(%s): %s", actor.ID.String(), err.Error())
	}
}

func (h *Handler) getActor(c *gin.Context) model.Actor {
	value, exists := c.Get(actorKey)
	if !exists {
		return model.Anonymous
	}

	actor, ok := value.(model.Actor)
	if !ok {
		return model.Anonymous
	}

	return actor
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func parseID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(param)), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
