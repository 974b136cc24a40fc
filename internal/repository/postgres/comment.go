package postgres

import (
	"context"
	"time"

	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const commentColumns = `c.id, c.article_id, c.author_id, c.parent_id, c.content, c.status, c.reported, c.moderation_reason, c.created_at, c.updated_at`

// fullCommentColumns expects the viewer id as $1.
const fullCommentColumns = commentColumns + `,
		u.username, u.display_name, u.avatar_url,
		(SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = c.id),
		EXISTS(SELECT 1 FROM comment_likes l WHERE l.comment_id = c.id AND l.user_id = $1),
		(SELECT COUNT(*) FROM comment_reports r WHERE r.comment_id = c.id)`

type commentRepo struct {
	*dbConn
}

func newCommentRepo(conn *dbConn) Comment {
	return &commentRepo{
		dbConn: conn,
	}
}

func scanComment(row pgx.Row) (*model.Comment, error) {
	var comment model.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.ArticleID,
		&comment.AuthorID,
		&comment.ParentID,
		&comment.Content,
		&comment.Status,
		&comment.Reported,
		&comment.ModerationReason,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &comment, nil
}

func fullCommentDest(comment *model.FullComment, username **string) []any {
	return []any{
		&comment.Comment.ID,
		&comment.Comment.ArticleID,
		&comment.Comment.AuthorID,
		&comment.Comment.ParentID,
		&comment.Comment.Content,
		&comment.Comment.Status,
		&comment.Comment.Reported,
		&comment.Comment.ModerationReason,
		&comment.Comment.CreatedAt,
		&comment.Comment.UpdatedAt,
		username,
		&comment.Author.DisplayName,
		&comment.Author.AvatarURL,
		&comment.LikesCount,
		&comment.UserLiked,
		&comment.ReportsCount,
	}
}

func scanFullComments(rows pgx.Rows) ([]*model.FullComment, error) {
	defer rows.Close()

	var comments []*model.FullComment
	for rows.Next() {
		var (
			comment  model.FullComment
			username *string
		)
		if err := rows.Scan(fullCommentDest(&comment, &username)...); err != nil {
			return nil, err
		}
		if username != nil {
			comment.Author.Username = *username
		}

		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *commentRepo) Create(ctx context.Context, comment model.Comment) (*model.Comment, error) {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if err := r.q(ctx).QueryRow(
		ctx,
		`INSERT INTO comments(article_id, author_id, parent_id, content, status, reported, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, FALSE, $6, $7) RETURNING id`,
		comment.ArticleID,
		comment.AuthorID,
		comment.ParentID,
		comment.Content,
		comment.Status,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID); err != nil {
		if constraint, ok := foreignKeyViolation(err); ok {
			if constraint == commentParentConstraint {
				return nil, ErrParentNotFound
			}
			return nil, ErrForeignKeyViolation
		}
		return nil, err
	}

	return &comment, nil
}

func (r *commentRepo) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	return scanComment(r.q(ctx).QueryRow(
		ctx,
		"SELECT "+commentColumns+" FROM comments c WHERE c.id = $1",
		id,
	))
}

func (r *commentRepo) FindFullByID(ctx context.Context, id int64, viewerID uuid.UUID) (*model.FullComment, error) {
	var (
		comment  model.FullComment
		username *string
	)
	if err := r.q(ctx).QueryRow(
		ctx,
		`SELECT `+fullCommentColumns+`
		FROM comments c
		LEFT JOIN cached_users u ON c.author_id = u.id
		WHERE c.id = $2`,
		viewerID,
		id,
	).Scan(fullCommentDest(&comment, &username)...); err != nil {
		return nil, err
	}
	if username != nil {
		comment.Author.Username = *username
	}

	return &comment, nil
}

func (r *commentRepo) UpdateContent(ctx context.Context, id int64, content string) (*model.Comment, error) {
	return scanComment(r.q(ctx).QueryRow(
		ctx,
		`UPDATE comments c SET content = $2, updated_at = NOW()
		WHERE c.id = $1
		RETURNING `+commentColumns,
		id,
		content,
	))
}

func (r *commentRepo) UpdateModeration(ctx context.Context, id int64, upd ModerationUpdate) (*model.Comment, error) {
	return scanComment(r.q(ctx).QueryRow(
		ctx,
		`UPDATE comments c SET
		status = COALESCE($2, c.status),
		reported = COALESCE($3, c.reported),
		moderation_reason = COALESCE($4, c.moderation_reason),
		updated_at = NOW()
		WHERE c.id = $1
		RETURNING `+commentColumns,
		id,
		upd.Status,
		upd.Reported,
		upd.Reason,
	))
}

func (r *commentRepo) SetReported(ctx context.Context, id int64, reported bool) error {
	tag, err := r.q(ctx).Exec(ctx, "UPDATE comments SET reported = $2, updated_at = NOW() WHERE id = $1", id, reported)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// Delete removes the comment. Replies, likes and reports go with it through ON DELETE CASCADE.
func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q(ctx).Exec(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// ExistingIDs returns the subset of ids that exist, locking those rows until the transaction ends.
func (r *commentRepo) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := r.q(ctx).Query(ctx, "SELECT id FROM comments WHERE id = ANY($1) ORDER BY id FOR UPDATE", ids)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *commentRepo) FindRoots(ctx context.Context, q RootsQuery) ([]*model.FullComment, error) {
	rows, err := r.q(ctx).Query(
		ctx,
		`SELECT `+fullCommentColumns+`
		FROM comments c
		LEFT JOIN cached_users u ON c.author_id = u.id
		WHERE c.article_id = $2 AND c.parent_id IS NULL AND ($3::boolean = FALSE OR c.status = 'approved')
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $4
		OFFSET $5`,
		q.ViewerID,
		q.ArticleID,
		q.OnlyApproved,
		q.Limit,
		q.Offset,
	)
	if err != nil {
		return nil, err
	}

	return scanFullComments(rows)
}

func (r *commentRepo) CountRoots(ctx context.Context, articleID int64, onlyApproved bool) (int64, error) {
	var count int64
	err := r.q(ctx).QueryRow(
		ctx,
		`SELECT COUNT(*) FROM comments c
		WHERE c.article_id = $1 AND c.parent_id IS NULL AND ($2::boolean = FALSE OR c.status = 'approved')`,
		articleID,
		onlyApproved,
	).Scan(&count)
	return count, err
}

func (r *commentRepo) CountAll(ctx context.Context, articleID int64, onlyApproved bool) (int64, error) {
	var count int64
	err := r.q(ctx).QueryRow(
		ctx,
		`SELECT COUNT(*) FROM comments c
		WHERE c.article_id = $1 AND ($2::boolean = FALSE OR c.status = 'approved')`,
		articleID,
		onlyApproved,
	).Scan(&count)
	return count, err
}

func (r *commentRepo) FindReplies(ctx context.Context, rootIDs []int64, viewerID uuid.UUID, onlyApproved bool) ([]*model.FullComment, error) {
	if len(rootIDs) == 0 {
		return nil, nil
	}

	rows, err := r.q(ctx).Query(
		ctx,
		`SELECT `+fullCommentColumns+`
		FROM comments c
		LEFT JOIN cached_users u ON c.author_id = u.id
		WHERE c.parent_id = ANY($2) AND ($3::boolean = FALSE OR c.status = 'approved')
		ORDER BY c.created_at ASC, c.id ASC`,
		viewerID,
		rootIDs,
		onlyApproved,
	)
	if err != nil {
		return nil, err
	}

	return scanFullComments(rows)
}

func (r *commentRepo) FindForModeration(ctx context.Context, q ModerationQuery) ([]*model.ModerationComment, error) {
	rows, err := r.q(ctx).Query(
		ctx,
		`SELECT `+fullCommentColumns+`, a.title, a.slug
		FROM comments c
		JOIN cached_articles a ON c.article_id = a.id
		LEFT JOIN cached_users u ON c.author_id = u.id
		WHERE ($2::text = '' OR c.status = $2::text) AND ($3::boolean = FALSE OR c.reported)
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $4
		OFFSET $5`,
		q.ViewerID,
		string(q.Status),
		q.ReportedOnly,
		q.Limit,
		q.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*model.ModerationComment
	for rows.Next() {
		var (
			comment  model.ModerationComment
			username *string
		)
		dest := append(fullCommentDest(&comment.FullComment, &username), &comment.ArticleTitle, &comment.ArticleSlug)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if username != nil {
			comment.Author.Username = *username
		}

		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *commentRepo) CountForModeration(ctx context.Context, q ModerationQuery) (int64, error) {
	var count int64
	err := r.q(ctx).QueryRow(
		ctx,
		`SELECT COUNT(*) FROM comments c
		WHERE ($1::text = '' OR c.status = $1::text) AND ($2::boolean = FALSE OR c.reported)`,
		string(q.Status),
		q.ReportedOnly,
	).Scan(&count)
	return count, err
}

func (r *commentRepo) FindUserSummaries(ctx context.Context, userID uuid.UUID) ([]*model.UserCommentSummary, error) {
	rows, err := r.q(ctx).Query(
		ctx,
		`SELECT
		c.id, c.article_id, COALESCE(a.title, ''), c.content, c.status, c.created_at,
		COUNT(DISTINCT r.id),
		COALESCE(ARRAY_AGG(DISTINCT r.reason) FILTER (WHERE r.reason IS NOT NULL), '{}')
		FROM comments c
		LEFT JOIN cached_articles a ON a.id = c.article_id
		LEFT JOIN comment_reports r ON r.comment_id = c.id
		WHERE c.author_id = $1
		GROUP BY c.id, a.title
		ORDER BY c.created_at DESC, c.id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*model.UserCommentSummary
	for rows.Next() {
		var s model.UserCommentSummary
		if err := rows.Scan(
			&s.ID,
			&s.ArticleID,
			&s.ArticleTitle,
			&s.Content,
			&s.Status,
			&s.CreatedAt,
			&s.ReportsCount,
			&s.ReportReasons,
		); err != nil {
			return nil, err
		}

		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}
