package postgres

import (
	"context"

	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type reportRepo struct {
	*dbConn
}

func newReportRepo(conn *dbConn) Report {
	return &reportRepo{
		dbConn: conn,
	}
}

// Create returns ErrUniqueViolation when the reporter already reported the comment.
func (r *reportRepo) Create(ctx context.Context, report model.CommentReport) (*model.CommentReport, error) {
	if report.Status == "" {
		report.Status = model.ReportPending
	}
	err := r.q(ctx).QueryRow(
		ctx,
		`INSERT INTO comment_reports(comment_id, reporter_id, reason, additional_info, status)
		VALUES($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT unique_comment_report DO NOTHING
		RETURNING id, created_at`,
		report.CommentID,
		report.ReporterID,
		report.Reason,
		report.Detail,
		report.Status,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows || isUniqueViolation(err) {
			return nil, ErrUniqueViolation
		}
		return nil, err
	}

	return &report, nil
}

func (r *reportRepo) Exists(ctx context.Context, commentID int64, reporterID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM comment_reports WHERE comment_id = $1 AND reporter_id = $2)",
		commentID,
		reporterID,
	).Scan(&exists)
	return exists, err
}

func (r *reportRepo) FindByComment(ctx context.Context, commentID int64) ([]*model.CommentReport, error) {
	rows, err := r.q(ctx).Query(
		ctx,
		`SELECT id, comment_id, reporter_id, reason, additional_info, status, created_at
		FROM comment_reports
		WHERE comment_id = $1
		ORDER BY created_at DESC, id DESC`,
		commentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*model.CommentReport
	for rows.Next() {
		var report model.CommentReport
		if err := rows.Scan(
			&report.ID,
			&report.CommentID,
			&report.ReporterID,
			&report.Reason,
			&report.Detail,
			&report.Status,
			&report.CreatedAt,
		); err != nil {
			return nil, err
		}

		reports = append(reports, &report)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

func (r *reportRepo) DeleteByComment(ctx context.Context, commentID int64) (int64, error) {
	tag, err := r.q(ctx).Exec(ctx, "DELETE FROM comment_reports WHERE comment_id = $1", commentID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
