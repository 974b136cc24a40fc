package service

import (
	"context"

	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/google/uuid"
)

func (s *commentService) ToggleLike(ctx context.Context, actor model.Actor, commentID int64) (*model.LikeResult, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrForbidden
	}

	var result model.LikeResult
	if err := s.repo.Postgres.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.findComment(ctx, commentID); err != nil {
			return err
		}

		removed, err := s.repo.Postgres.Like.Delete(ctx, commentID, actor.ID)
		if err != nil {
			return err
		}
		if !removed {
			// A false return means a concurrent toggle inserted the same like first.
			if _, err := s.repo.Postgres.Like.Create(ctx, commentID, actor.ID); err != nil {
				return err
			}
		}
		result.Liked = !removed

		result.LikesCount, err = s.repo.Postgres.Like.Count(ctx, commentID)
		return err
	}); err != nil {
		if isDomainError(err) {
			return nil, err
		}

		s.logger.Sugar().Errorf("failed to toggle like on comment(%d) by user(%s): %s", commentID, actor.ID.String(), err.Error())
		return nil, ErrInternal
	}

	outcome := "unliked"
	if result.Liked {
		outcome = "liked"
	}
	s.metrics.LikeToggles.WithLabelValues(outcome).Inc()

	return &result, nil
}

func (s *commentService) IsLiked(ctx context.Context, commentID int64, userID uuid.UUID) bool {
	liked, err := s.repo.Postgres.Like.Exists(ctx, commentID, userID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to check if user(%s) liked comment(%d): %s", userID.String(), commentID, err.Error())
		return false
	}

	return liked
}
