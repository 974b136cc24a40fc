package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/BloggingApp/comment-service/internal/rabbitmq"
	"github.com/BloggingApp/comment-service/internal/repository"
	"github.com/BloggingApp/comment-service/internal/repository/redisrepo"
	"go.uber.org/zap"
)

const articleExistsTTL = 10 * time.Minute

type articleService struct {
	logger   *zap.Logger
	repo     *repository.Repository
	rabbitmq *rabbitmq.MQConn
}

func newArticleService(logger *zap.Logger, repo *repository.Repository, rabbitmq *rabbitmq.MQConn) *articleService {
	return &articleService{
		logger:   logger,
		repo:     repo,
		rabbitmq: rabbitmq,
	}
}

func (s *articleService) Upsert(ctx context.Context, article model.CachedArticle) error {
	if err := s.repo.Postgres.Article.Upsert(ctx, article); err != nil {
		s.logger.Sugar().Errorf("failed to upsert cached article(%d): %s", article.ID, err.Error())
		return ErrInternal
	}

	s.forget(ctx, article.ID)
	return nil
}

// Delete drops the cached article and, through the foreign key, every comment on it.
func (s *articleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Postgres.Article.Delete(ctx, id); err != nil {
		s.logger.Sugar().Errorf("failed to delete cached article(%d): %s", id, err.Error())
		return ErrInternal
	}

	s.forget(ctx, id)
	return nil
}

func (s *articleService) forget(ctx context.Context, id int64) {
	if err := s.repo.Redis.Default.Del(ctx, redisrepo.ArticleKey(id)).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete article(%d) from redis: %s", id, err.Error())
	}
}

func (s *articleService) Exists(ctx context.Context, id int64) (bool, error) {
	key := redisrepo.ArticleKey(id)
	cached, hit, err := redisrepo.GetBool(s.repo.Redis.Default, ctx, key)
	if err != nil {
		s.logger.Sugar().Errorf("failed to get article(%d) from redis: %s", id, err.Error())
	}
	if hit {
		return cached, nil
	}

	exists, err := s.repo.Postgres.Article.Exists(ctx, id)
	if err != nil {
		s.logger.Sugar().Errorf("failed to check if article(%d) exists: %s", id, err.Error())
		return false, ErrInternal
	}

	if err := s.repo.Redis.Default.Set(ctx, key, exists, articleExistsTTL); err != nil {
		s.logger.Sugar().Errorf("failed to set article(%d) in redis: %s", id, err.Error())
	}

	return exists, nil
}

func (s *articleService) consumePostCreated(ctx context.Context) {
	queue := rabbitmq.POST_CREATED_QUEUE
	msgs, err := s.rabbitmq.Consume(queue)
	if err != nil {
		s.logger.Sugar().Fatalf("failed to start consume from queue(%s): %s", queue, err.Error())
	}

	for msg := range msgs {
		var data dto.MQPostCreatedMsg
		if err := json.Unmarshal(msg.Body, &data); err != nil {
			s.logger.Sugar().Errorf("failed to unmarshal json in queue(%s): %s", queue, err.Error())
			msg.Nack(false, false)
			continue
		}
		if data.PostID <= 0 {
			s.logger.Sugar().Errorf("'post_id' field is not provided")
			msg.Nack(false, false)
			continue
		}

		if err := s.Upsert(ctx, model.CachedArticle{
			ID:        data.PostID,
			AuthorID:  data.UserID,
			Title:     data.PostTitle,
			Slug:      data.PostSlug,
			CreatedAt: data.CreatedAt,
		}); err != nil {
			msg.Nack(false, true)
			continue
		}

		msg.Ack(false)
	}
}

func (s *articleService) consumePostDeleted(ctx context.Context) {
	queue := rabbitmq.POST_DELETED_QUEUE
	msgs, err := s.rabbitmq.Consume(queue)
	if err != nil {
		s.logger.Sugar().Fatalf("failed to start consume from queue(%s): %s", queue, err.Error())
	}

	for msg := range msgs {
		var data dto.MQPostDeletedMsg
		if err := json.Unmarshal(msg.Body, &data); err != nil {
			s.logger.Sugar().Errorf("failed to unmarshal json in queue(%s): %s", queue, err.Error())
			msg.Nack(false, false)
			continue
		}

		if err := s.Delete(ctx, data.PostID); err != nil {
			msg.Nack(false, true)
			continue
		}

		msg.Ack(false)
	}
}
