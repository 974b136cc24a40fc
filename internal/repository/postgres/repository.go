package postgres

import (
	"context"
	"errors"

	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	ErrUniqueViolation          = errors.New("unique violation")
	ErrForeignKeyViolation      = errors.New("foreign key violation")
	ErrParentNotFound           = errors.New("parent comment not found")
	ErrFieldsNotAllowedToUpdate = errors.New("fields not allowed to update")
)

// Transactor runs fn in a single database transaction. Repositories called
// with the ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RootsQuery selects one page of root comments of an article.
type RootsQuery struct {
	ArticleID    int64
	ViewerID     uuid.UUID
	OnlyApproved bool
	Limit        int
	Offset       int
}

type ModerationQuery struct {
	// Status is empty for every status.
	Status       model.CommentStatus
	ReportedOnly bool
	ViewerID     uuid.UUID
	Limit        int
	Offset       int
}

// ModerationUpdate lists the admin-controlled columns; nil fields are left untouched.
type ModerationUpdate struct {
	Status   *model.CommentStatus
	Reported *bool
	Reason   *string
}

type Comment interface {
	Create(ctx context.Context, comment model.Comment) (*model.Comment, error)
	FindByID(ctx context.Context, id int64) (*model.Comment, error)
	FindFullByID(ctx context.Context, id int64, viewerID uuid.UUID) (*model.FullComment, error)
	UpdateContent(ctx context.Context, id int64, content string) (*model.Comment, error)
	UpdateModeration(ctx context.Context, id int64, upd ModerationUpdate) (*model.Comment, error)
	SetReported(ctx context.Context, id int64, reported bool) error
	Delete(ctx context.Context, id int64) error
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	FindRoots(ctx context.Context, q RootsQuery) ([]*model.FullComment, error)
	CountRoots(ctx context.Context, articleID int64, onlyApproved bool) (int64, error)
	CountAll(ctx context.Context, articleID int64, onlyApproved bool) (int64, error)
	FindReplies(ctx context.Context, rootIDs []int64, viewerID uuid.UUID, onlyApproved bool) ([]*model.FullComment, error)
	FindForModeration(ctx context.Context, q ModerationQuery) ([]*model.ModerationComment, error)
	CountForModeration(ctx context.Context, q ModerationQuery) (int64, error)
	FindUserSummaries(ctx context.Context, userID uuid.UUID) ([]*model.UserCommentSummary, error)
}

type Like interface {
	Create(ctx context.Context, commentID int64, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, commentID int64, userID uuid.UUID) (bool, error)
	Exists(ctx context.Context, commentID int64, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, commentID int64) (int64, error)
}

type Report interface {
	Create(ctx context.Context, report model.CommentReport) (*model.CommentReport, error)
	Exists(ctx context.Context, commentID int64, reporterID uuid.UUID) (bool, error)
	FindByComment(ctx context.Context, commentID int64) ([]*model.CommentReport, error)
	DeleteByComment(ctx context.Context, commentID int64) (int64, error)
}

type Article interface {
	Upsert(ctx context.Context, article model.CachedArticle) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

type UserCache interface {
	Create(ctx context.Context, cachedUser model.CachedUser) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
}

type PostgresRepository struct {
	Transactor
	Comment
	Like
	Report
	Article
	UserCache
}

func New(db *pgxpool.Pool, logger *zap.Logger) *PostgresRepository {
	conn := &dbConn{pool: db, logger: logger}
	return &PostgresRepository{
		Transactor: conn,
		Comment:    newCommentRepo(conn),
		Like:       newLikeRepo(conn),
		Report:     newReportRepo(conn),
		Article:    newArticleRepo(conn),
		UserCache:  newUserCacheRepo(conn),
	}
}
