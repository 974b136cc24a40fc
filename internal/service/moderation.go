package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BloggingApp/comment-service/internal/config"
	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/BloggingApp/comment-service/internal/metrics"
	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/BloggingApp/comment-service/internal/render"
	"github.com/BloggingApp/comment-service/internal/repository"
	"github.com/BloggingApp/comment-service/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ModerationAction string

const (
	ActionApprove  ModerationAction = "approve"
	ActionReject   ModerationAction = "reject"
	ActionUnreport ModerationAction = "unreport"
	ActionDelete   ModerationAction = "delete"
)

func ParseModerationAction(action string) (ModerationAction, error) {
	switch a := ModerationAction(strings.ToLower(strings.TrimSpace(action))); a {
	case ActionApprove, ActionReject, ActionUnreport, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, action)
}

// transitions lists the statuses reachable from each status. Nothing moves back to pending.
var transitions = map[model.CommentStatus][]model.CommentStatus{
	model.StatusPending:  {model.StatusApproved, model.StatusRejected},
	model.StatusApproved: {model.StatusApproved, model.StatusRejected},
	model.StatusRejected: {model.StatusApproved, model.StatusRejected},
}

func canTransition(from, to model.CommentStatus) bool {
	for _, status := range transitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

type moderationService struct {
	logger  *zap.Logger
	repo    *repository.Repository
	cfg     config.CommentsConfig
	metrics *metrics.Metrics
}

func newModerationService(logger *zap.Logger, repo *repository.Repository, cfg config.CommentsConfig, m *metrics.Metrics) Moderation {
	return &moderationService{
		logger:  logger,
		repo:    repo,
		cfg:     cfg,
		metrics: m,
	}
}

func normalizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// apply performs action on an existing comment inside the caller's transaction.
// It returns pgx.ErrNoRows when the comment is gone and a nil comment for deletes.
func (s *moderationService) apply(ctx context.Context, commentID int64, action ModerationAction, reason *string) (*model.Comment, error) {
	if action == ActionDelete {
		return nil, s.repo.Postgres.Comment.Delete(ctx, commentID)
	}

	current, err := s.repo.Postgres.Comment.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	var (
		upd         = postgres.ModerationUpdate{Reason: reason}
		notReported = false
		target      model.CommentStatus
	)
	switch action {
	case ActionApprove:
		target = model.StatusApproved
		upd.Reported = &notReported
	case ActionReject:
		target = model.StatusRejected
	case ActionUnreport:
		upd.Reported = &notReported
	}

	if target != "" {
		if !canTransition(current.Status, target) {
			return nil, fmt.Errorf("%w: cannot move comment from %s to %s", ErrInvalidAction, current.Status, target)
		}
		upd.Status = &target
	}

	return s.repo.Postgres.Comment.UpdateModeration(ctx, commentID, upd)
}

func (s *moderationService) Moderate(ctx context.Context, actor model.Actor, commentID int64, action string, reason *string) (*model.Comment, error) {
	act, err := ParseModerationAction(action)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	var comment *model.Comment
	if err := s.repo.Postgres.WithinTx(ctx, func(ctx context.Context) error {
		comment, err = s.apply(ctx, commentID, act, normalizeReason(reason))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: comment %d does not exist", ErrNotFound, commentID)
		}
		return err
	}); err != nil {
		if isDomainError(err) {
			return nil, err
		}

		s.logger.Sugar().Errorf("failed to %s comment(%d): %s", act, commentID, err.Error())
		return nil, ErrInternal
	}

	if act == ActionDelete {
		s.metrics.CommentsDeleted.Inc()
	}
	s.metrics.ModerationActions.WithLabelValues(string(act), "single").Inc()
	s.logger.Info("comment moderated", zap.Int64("comment_id", commentID), zap.String("action", string(act)), zap.String("moderator_id", actor.ID.String()))

	return comment, nil
}

func (s *moderationService) FindForModeration(ctx context.Context, actor model.Actor, dto dto.GetModerationCommentsDto) (*model.ModerationPage, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	var status model.CommentStatus
	if raw := strings.ToLower(strings.TrimSpace(dto.Status)); raw != "" && raw != "all" {
		status = model.CommentStatus(raw)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid status filter %q", ErrValidation, dto.Status)
		}
	}

	page, perPage := normalizePage(dto.Page, dto.PerPage, DEFAULT_MODERATION_PER_PAGE, MAX_MODERATION_PER_PAGE)
	q := postgres.ModerationQuery{
		Status:       status,
		ReportedOnly: dto.Reported,
		ViewerID:     actor.ID,
		Limit:        perPage,
		Offset:       (page - 1) * perPage,
	}

	comments, err := s.repo.Postgres.Comment.FindForModeration(ctx, q)
	if err != nil {
		s.logger.Sugar().Errorf("failed to get comments for moderation: %s", err.Error())
		return nil, ErrInternal
	}

	total, err := s.repo.Postgres.Comment.CountForModeration(ctx, q)
	if err != nil {
		s.logger.Sugar().Errorf("failed to count comments for moderation: %s", err.Error())
		return nil, ErrInternal
	}

	for _, comment := range comments {
		comment.ContentHTML = render.CommentHTML(comment.Comment.Content)
	}
	if comments == nil {
		comments = []*model.ModerationComment{}
	}

	return &model.ModerationPage{
		Comments:   comments,
		Pagination: model.NewPagination(page, perPage, total),
	}, nil
}

func (s *moderationService) FindUserComments(ctx context.Context, actor model.Actor, userID uuid.UUID) ([]*model.UserCommentSummary, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	summaries, err := s.repo.Postgres.Comment.FindUserSummaries(ctx, userID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to get comments of user(%s): %s", userID.String(), err.Error())
		return nil, ErrInternal
	}

	for _, summary := range summaries {
		if summary.ReportReasons == nil {
			summary.ReportReasons = []string{}
		}
	}
	if summaries == nil {
		summaries = []*model.UserCommentSummary{}
	}

	return summaries, nil
}
