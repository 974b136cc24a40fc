package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/BloggingApp/comment-service/internal/metrics"
	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/BloggingApp/comment-service/internal/rabbitmq"
	"github.com/BloggingApp/comment-service/internal/repository"
	"github.com/BloggingApp/comment-service/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const MAX_REPORT_DETAIL_LENGTH = 1000

type reportService struct {
	logger    *zap.Logger
	repo      *repository.Repository
	publisher Publisher
	metrics   *metrics.Metrics
}

func newReportService(logger *zap.Logger, repo *repository.Repository, publisher Publisher, m *metrics.Metrics) Report {
	return &reportService{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
	}
}

func parseReportRequest(dto dto.ReportCommentDto) (model.ReportReason, *string, error) {
	reason := model.ReportReason(strings.TrimSpace(dto.Reason))
	if reason == "" {
		reason = model.ReasonInappropriateContent
	}
	if !reason.Valid() {
		return "", nil, fmt.Errorf("%w: invalid report reason %q", ErrValidation, dto.Reason)
	}

	if dto.AdditionalInfo == nil {
		return reason, nil, nil
	}
	detail := strings.TrimSpace(*dto.AdditionalInfo)
	if detail == "" {
		return reason, nil, nil
	}
	if utf8.RuneCountInString(detail) > MAX_REPORT_DETAIL_LENGTH {
		return "", nil, fmt.Errorf("%w: additional info cannot exceed %d characters", ErrValidation, MAX_REPORT_DETAIL_LENGTH)
	}

	return reason, &detail, nil
}

func (s *reportService) Create(ctx context.Context, actor model.Actor, commentID int64, dto dto.ReportCommentDto) (*model.CommentReport, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrForbidden
	}

	reason, detail, err := parseReportRequest(dto)
	if err != nil {
		return nil, err
	}

	var (
		report  *model.CommentReport
		comment *model.Comment
	)
	if err := s.repo.Postgres.WithinTx(ctx, func(ctx context.Context) error {
		comment, err = s.repo.Postgres.Comment.FindByID(ctx, commentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		exists, err := s.repo.Postgres.Report.Exists(ctx, commentID, actor.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateReport
		}

		report, err = s.repo.Postgres.Report.Create(ctx, model.CommentReport{
			CommentID:  commentID,
			ReporterID: actor.ID,
			Reason:     reason,
			Detail:     detail,
			Status:     model.ReportPending,
		})
		if err != nil {
			if errors.Is(err, postgres.ErrUniqueViolation) {
				return ErrDuplicateReport
			}
			return err
		}

		return s.repo.Postgres.Comment.SetReported(ctx, commentID, true)
	}); err != nil {
		if isDomainError(err) {
			return nil, err
		}

		s.logger.Sugar().Errorf("failed to report comment(%d) by user(%s): %s", commentID, actor.ID.String(), err.Error())
		return nil, ErrInternal
	}

	s.metrics.ReportsSubmitted.WithLabelValues(string(report.Reason)).Inc()
	s.notifyReported(ctx, comment, report)

	return report, nil
}

func (s *reportService) notifyReported(ctx context.Context, comment *model.Comment, report *model.CommentReport) {
	if s.publisher == nil {
		return
	}

	msg := dto.MQCommentReportedMsg{
		CommentID:  comment.ID,
		ArticleID:  comment.ArticleID,
		ReporterID: report.ReporterID,
		Reason:     string(report.Reason),
		CreatedAt:  report.CreatedAt,
	}
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishJSON(publishCtx, rabbitmq.COMMENT_REPORTED_QUEUE, msg); err != nil {
		s.logger.Sugar().Errorf("failed to publish report of comment(%d) to queue(%s): %s", comment.ID, rabbitmq.COMMENT_REPORTED_QUEUE, err.Error())
	}
}

func (s *reportService) Dismiss(ctx context.Context, actor model.Actor, commentID int64) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}

	if err := s.repo.Postgres.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Postgres.Report.DeleteByComment(ctx, commentID); err != nil {
			return err
		}

		if err := s.repo.Postgres.Comment.SetReported(ctx, commentID, false); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		return nil
	}); err != nil {
		if isDomainError(err) {
			return err
		}

		s.logger.Sugar().Errorf("failed to dismiss reports of comment(%d): %s", commentID, err.Error())
		return ErrInternal
	}

	s.metrics.ReportsDismissed.Inc()
	return nil
}

func (s *reportService) FindByComment(ctx context.Context, actor model.Actor, commentID int64) ([]*model.CommentReport, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	if _, err := s.repo.Postgres.Comment.FindByID(ctx, commentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Sugar().Errorf("failed to get comment(%d): %s", commentID, err.Error())
		return nil, ErrInternal
	}

	reports, err := s.repo.Postgres.Report.FindByComment(ctx, commentID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to get reports of comment(%d): %s", commentID, err.Error())
		return nil, ErrInternal
	}
	if reports == nil {
		reports = []*model.CommentReport{}
	}

	return reports, nil
}
