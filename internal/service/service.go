package service

import (
	"context"

	"github.com/BloggingApp/comment-service/internal/config"
	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/BloggingApp/comment-service/internal/filter"
	"github.com/BloggingApp/comment-service/internal/metrics"
	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/BloggingApp/comment-service/internal/rabbitmq"
	"github.com/BloggingApp/comment-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DEFAULT_PER_PAGE            = 10
	MAX_PER_PAGE                = 50
	DEFAULT_MODERATION_PER_PAGE = 50
	MAX_MODERATION_PER_PAGE     = 100
	MAX_PAGE                    = 1_000_000
)

func normalizePage(page, perPage, defaultPerPage, maxPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MAX_PAGE {
		page = MAX_PAGE
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

type Comment interface {
	Create(ctx context.Context, actor model.Actor, dto dto.CreateCommentDto) (*model.Comment, error)
	Update(ctx context.Context, actor model.Actor, commentID int64, content string) (*model.Comment, error)
	Delete(ctx context.Context, actor model.Actor, commentID int64) error
	FindByID(ctx context.Context, viewer model.Actor, commentID int64) (*model.FullComment, error)
	FindArticleComments(ctx context.Context, viewer model.Actor, articleID int64, page int, perPage int) (*model.CommentPage, error)
	ToggleLike(ctx context.Context, actor model.Actor, commentID int64) (*model.LikeResult, error)
	IsLiked(ctx context.Context, commentID int64, userID uuid.UUID) bool
}

type Report interface {
	Create(ctx context.Context, actor model.Actor, commentID int64, dto dto.ReportCommentDto) (*model.CommentReport, error)
	Dismiss(ctx context.Context, actor model.Actor, commentID int64) error
	FindByComment(ctx context.Context, actor model.Actor, commentID int64) ([]*model.CommentReport, error)
}

type Moderation interface {
	Moderate(ctx context.Context, actor model.Actor, commentID int64, action string, reason *string) (*model.Comment, error)
	ModerateBulk(ctx context.Context, actor model.Actor, commentIDs []int64, action string, reason *string) (*model.BulkResult, error)
	FindForModeration(ctx context.Context, actor model.Actor, dto dto.GetModerationCommentsDto) (*model.ModerationPage, error)
	FindUserComments(ctx context.Context, actor model.Actor, userID uuid.UUID) ([]*model.UserCommentSummary, error)
}

type UserCache interface {
	CreateOrGet(ctx context.Context, id uuid.UUID, accessToken string) (*model.CachedUser, error)
	Create(ctx context.Context, cachedUser model.CachedUser) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
}

type Article interface {
	Upsert(ctx context.Context, article model.CachedArticle) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// Publisher sends JSON messages to a queue.
type Publisher interface {
	PublishJSON(ctx context.Context, queue string, v interface{}) error
}

type Service struct {
	Comment
	Report
	Moderation
	UserCache
	Article

	userCache *userCacheService
	article   *articleService
}

func New(logger *zap.Logger, repo *repository.Repository, mq *rabbitmq.MQConn, cfg config.CommentsConfig, m *metrics.Metrics) *Service {
	var publisher Publisher
	if mq != nil {
		publisher = mq
	}

	blacklist := filter.NewBlacklist(cfg.Blacklist)
	articles := newArticleService(logger, repo, mq)
	comments := newCommentService(logger, repo, cfg, blacklist, articles, m)
	users := newUserCacheService(logger, repo, mq)

	return &Service{
		Comment:    comments,
		Report:     newReportService(logger, repo, publisher, m),
		Moderation: newModerationService(logger, repo, cfg, m),
		UserCache:  users,
		Article:    articles,
		userCache:  users,
		article:    articles,
	}
}

// StartConsumeAll consumes the queues that keep the local user and article caches in sync.
func (s *Service) StartConsumeAll(ctx context.Context) {
	go s.userCache.consumeUserUpdates(ctx)
	go s.article.consumePostCreated(ctx)
	go s.article.consumePostDeleted(ctx)
}
