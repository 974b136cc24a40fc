package postgres

import (
	"context"
	"strconv"

	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/google/uuid"
)

var userCacheColumns = map[string]struct{}{
	"username":     {},
	"display_name": {},
	"avatar_url":   {},
}

type userCacheRepo struct {
	*dbConn
}

func newUserCacheRepo(conn *dbConn) UserCache {
	return &userCacheRepo{
		dbConn: conn,
	}
}

func (r *userCacheRepo) Create(ctx context.Context, cachedUser model.CachedUser) error {
	_, err := r.q(ctx).Exec(
		ctx,
		`INSERT INTO cached_users(id, username, display_name, avatar_url) VALUES($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, display_name = EXCLUDED.display_name, avatar_url = EXCLUDED.avatar_url`,
		cachedUser.ID,
		cachedUser.Username,
		cachedUser.DisplayName,
		cachedUser.AvatarURL,
	)
	return err
}

func (r *userCacheRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	for field := range updates {
		if _, ok := userCacheColumns[field]; !ok {
			return ErrFieldsNotAllowedToUpdate
		}
	}

	query := "UPDATE cached_users SET "
	args := []interface{}{}
	i := 1

	for column, value := range updates {
		query += (column + " = $" + strconv.Itoa(i) + ", ")
		args = append(args, value)
		i++
	}

	query = query[:len(query)-2] + " WHERE id = $" + strconv.Itoa(i)
	args = append(args, id)

	_, err := r.q(ctx).Exec(ctx, query, args...)
	return err
}

func (r *userCacheRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error) {
	var user model.CachedUser
	if err := r.q(ctx).QueryRow(
		ctx,
		"SELECT u.id, u.username, COALESCE(u.display_name, ''), COALESCE(u.avatar_url, '') FROM cached_users u WHERE u.id = $1",
		id,
	).Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.AvatarURL,
	); err != nil {
		return nil, err
	}

	return &user, nil
}
