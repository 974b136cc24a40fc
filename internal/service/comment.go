package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BloggingApp/comment-service/internal/config"
	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/BloggingApp/comment-service/internal/filter"
	"github.com/BloggingApp/comment-service/internal/metrics"
	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/BloggingApp/comment-service/internal/render"
	"github.com/BloggingApp/comment-service/internal/repository"
	"github.com/BloggingApp/comment-service/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type commentService struct {
	logger    *zap.Logger
	repo      *repository.Repository
	cfg       config.CommentsConfig
	blacklist *filter.Blacklist
	articles  Article
	metrics   *metrics.Metrics
}

func newCommentService(logger *zap.Logger, repo *repository.Repository, cfg config.CommentsConfig, blacklist *filter.Blacklist, articles Article, m *metrics.Metrics) *commentService {
	return &commentService{
		logger:    logger,
		repo:      repo,
		cfg:       cfg,
		blacklist: blacklist,
		articles:  articles,
		metrics:   m,
	}
}

// validateContent trims content and checks it against the length limit and the blacklist.
func (s *commentService) validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: comment cannot be empty", ErrValidation)
	}
	if utf8.RuneCountInString(content) > s.cfg.MaxLength {
		return "", fmt.Errorf("%w: comment cannot exceed %d characters", ErrValidation, s.cfg.MaxLength)
	}
	if s.blacklist.Contains(content) {
		return "", fmt.Errorf("%w: comment contains inappropriate content", ErrValidation)
	}

	return content, nil
}

func (s *commentService) initialStatus() model.CommentStatus {
	if s.cfg.AutoApprove {
		return model.StatusApproved
	}
	return model.StatusPending
}

func (s *commentService) Create(ctx context.Context, actor model.Actor, dto dto.CreateCommentDto) (*model.Comment, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrForbidden
	}

	content, err := s.validateContent(dto.Content)
	if err != nil {
		return nil, err
	}

	exists, err := s.articles.Exists(ctx, dto.ArticleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: article %d does not exist", ErrNotFound, dto.ArticleID)
	}

	var comment *model.Comment
	if err := s.repo.Postgres.WithinTx(ctx, func(ctx context.Context) error {
		parentID, err := resolveParent(ctx, s.repo.Postgres.Comment, dto.ArticleID, dto.ParentID)
		if err != nil {
			return err
		}

		comment, err = s.repo.Postgres.Comment.Create(ctx, model.Comment{
			ArticleID: dto.ArticleID,
			AuthorID:  actor.ID,
			ParentID:  parentID,
			Content:   content,
			Status:    s.initialStatus(),
		})
		return err
	}); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		if errors.Is(err, postgres.ErrParentNotFound) {
			return nil, fmt.Errorf("%w: comment %d does not exist", ErrInvalidParent, *dto.ParentID)
		}
		if errors.Is(err, postgres.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: article %d does not exist", ErrNotFound, dto.ArticleID)
		}

		s.logger.Sugar().Errorf("failed to create comment on article(%d): %s", dto.ArticleID, err.Error())
		return nil, ErrInternal
	}

	s.metrics.CommentsCreated.WithLabelValues(string(comment.Status)).Inc()
	if mentions := filter.ExtractMentions(comment.Content); len(mentions) > 0 {
		s.logger.Debug("comment mentions", zap.Int64("comment_id", comment.ID), zap.Strings("usernames", mentions))
	}

	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actor model.Actor, commentID int64, content string) (*model.Comment, error) {
	var comment *model.Comment
	if err := s.repo.Postgres.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.findComment(ctx, commentID)
		if err != nil {
			return err
		}
		if !actor.Owns(current) {
			return ErrForbidden
		}

		content, err := s.validateContent(content)
		if err != nil {
			return err
		}

		comment, err = s.repo.Postgres.Comment.UpdateContent(ctx, commentID, content)
		return err
	}); err != nil {
		if isDomainError(err) {
			return nil, err
		}

		s.logger.Sugar().Errorf("failed to update comment(%d): %s", commentID, err.Error())
		return nil, ErrInternal
	}

	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actor model.Actor, commentID int64) error {
	if err := s.repo.Postgres.WithinTx(ctx, func(ctx context.Context) error {
		comment, err := s.findComment(ctx, commentID)
		if err != nil {
			return err
		}
		if !actor.Owns(comment) && !actor.IsAdmin {
			return ErrForbidden
		}

		return s.remove(ctx, commentID)
	}); err != nil {
		if isDomainError(err) {
			return err
		}

		s.logger.Sugar().Errorf("failed to delete comment(%d): %s", commentID, err.Error())
		return ErrInternal
	}

	s.metrics.CommentsDeleted.Inc()
	return nil
}

// remove deletes a comment together with its replies, likes and reports.
func (s *commentService) remove(ctx context.Context, commentID int64) error {
	if err := s.repo.Postgres.Comment.Delete(ctx, commentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	return nil
}

func (s *commentService) findComment(ctx context.Context, commentID int64) (*model.Comment, error) {
	comment, err := s.repo.Postgres.Comment.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: comment %d does not exist", ErrNotFound, commentID)
		}
		return nil, err
	}

	return comment, nil
}

func (s *commentService) FindByID(ctx context.Context, viewer model.Actor, commentID int64) (*model.FullComment, error) {
	comment, err := s.repo.Postgres.Comment.FindFullByID(ctx, commentID, viewer.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Sugar().Errorf("failed to get comment(%d): %s", commentID, err.Error())
		return nil, ErrInternal
	}

	if comment.Comment.Status != model.StatusApproved && !viewer.IsAdmin && !viewer.Owns(&comment.Comment) {
		return nil, ErrNotFound
	}

	comment.ContentHTML = render.CommentHTML(comment.Comment.Content)
	return comment, nil
}

func (s *commentService) FindArticleComments(ctx context.Context, viewer model.Actor, articleID int64, page int, perPage int) (*model.CommentPage, error) {
	page, perPage = normalizePage(page, perPage, DEFAULT_PER_PAGE, MAX_PER_PAGE)
	onlyApproved := !viewer.IsAdmin

	roots, err := s.repo.Postgres.Comment.FindRoots(ctx, postgres.RootsQuery{
		ArticleID:    articleID,
		ViewerID:     viewer.ID,
		OnlyApproved: onlyApproved,
		Limit:        perPage,
		Offset:       (page - 1) * perPage,
	})
	if err != nil {
		s.logger.Sugar().Errorf("failed to get root comments of article(%d): %s", articleID, err.Error())
		return nil, ErrInternal
	}

	total, err := s.repo.Postgres.Comment.CountRoots(ctx, articleID, onlyApproved)
	if err != nil {
		s.logger.Sugar().Errorf("failed to count root comments of article(%d): %s", articleID, err.Error())
		return nil, ErrInternal
	}

	totalAll, err := s.repo.Postgres.Comment.CountAll(ctx, articleID, onlyApproved)
	if err != nil {
		s.logger.Sugar().Errorf("failed to count comments of article(%d): %s", articleID, err.Error())
		return nil, ErrInternal
	}

	if err := s.attachReplies(ctx, roots, viewer.ID, onlyApproved); err != nil {
		s.logger.Sugar().Errorf("failed to get replies of article(%d): %s", articleID, err.Error())
		return nil, ErrInternal
	}

	if roots == nil {
		roots = []*model.FullComment{}
	}

	return &model.CommentPage{
		Comments:   roots,
		Pagination: model.NewPagination(page, perPage, total),
		TotalAll:   totalAll,
	}, nil
}

// attachReplies loads the replies of all roots in one query and hangs them under their root.
func (s *commentService) attachReplies(ctx context.Context, roots []*model.FullComment, viewerID uuid.UUID, onlyApproved bool) error {
	index := make(map[int64]*model.FullComment, len(roots))
	rootIDs := make([]int64, 0, len(roots))
	for _, root := range roots {
		root.ContentHTML = render.CommentHTML(root.Comment.Content)
		root.Replies = []*model.FullComment{}
		index[root.Comment.ID] = root
		rootIDs = append(rootIDs, root.Comment.ID)
	}

	replies, err := s.repo.Postgres.Comment.FindReplies(ctx, rootIDs, viewerID, onlyApproved)
	if err != nil {
		return err
	}

	for _, reply := range replies {
		if reply.Comment.ParentID == nil {
			continue
		}
		root, ok := index[*reply.Comment.ParentID]
		if !ok {
			continue
		}
		reply.ContentHTML = render.CommentHTML(reply.Comment.Content)
		reply.Replies = []*model.FullComment{}
		root.Replies = append(root.Replies, reply)
		root.RepliesCount++
	}

	return nil
}
