package postgres

import (
	"context"

	"github.com/google/uuid"
)

type likeRepo struct {
	*dbConn
}

func newLikeRepo(conn *dbConn) Like {
	return &likeRepo{
		dbConn: conn,
	}
}

// Create inserts the like and reports whether a row was written.
// An existing (comment, user) pair is left alone and reported as false.
func (r *likeRepo) Create(ctx context.Context, commentID int64, userID uuid.UUID) (bool, error) {
	tag, err := r.q(ctx).Exec(
		ctx,
		"INSERT INTO comment_likes(comment_id, user_id) VALUES($1, $2) ON CONFLICT ON CONSTRAINT unique_comment_like DO NOTHING",
		commentID,
		userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *likeRepo) Delete(ctx context.Context, commentID int64, userID uuid.UUID) (bool, error) {
	tag, err := r.q(ctx).Exec(ctx, "DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2", commentID, userID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *likeRepo) Exists(ctx context.Context, commentID int64, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = $1 AND user_id = $2)",
		commentID,
		userID,
	).Scan(&exists)
	return exists, err
}

func (r *likeRepo) Count(ctx context.Context, commentID int64) (int64, error) {
	var count int64
	err := r.q(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1", commentID).Scan(&count)
	return count, err
}
