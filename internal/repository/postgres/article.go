package postgres

import (
	"context"

	"github.com/BloggingApp/comment-service/internal/model"
)

type articleRepo struct {
	*dbConn
}

func newArticleRepo(conn *dbConn) Article {
	return &articleRepo{
		dbConn: conn,
	}
}

func (r *articleRepo) Upsert(ctx context.Context, article model.CachedArticle) error {
	_, err := r.q(ctx).Exec(
		ctx,
		`INSERT INTO cached_articles(id, author_id, title, slug, created_at) VALUES($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, slug = EXCLUDED.slug`,
		article.ID,
		article.AuthorID,
		article.Title,
		article.Slug,
		article.CreatedAt,
	)
	return err
}

// Delete drops the article together with all of its comments.
func (r *articleRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q(ctx).Exec(ctx, "DELETE FROM cached_articles WHERE id = $1", id)
	return err
}

func (r *articleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM cached_articles WHERE id = $1)", id).Scan(&exists)
	return exists, err
}
