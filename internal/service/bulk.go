package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// ModerateBulk applies one action to many comments in a single transaction.
// Unknown ids are skipped, or fail the whole batch when bulk_strict is set.
func (s *moderationService) ModerateBulk(ctx context.Context, actor model.Actor, commentIDs []int64, action string, reason *string) (*model.BulkResult, error) {
	act, err := ParseModerationAction(action)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	ids := uniqueIDs(commentIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no comment ids provided", ErrValidation)
	}
	if len(ids) > s.cfg.BulkMaxIDs {
		return nil, fmt.Errorf("%w: at most %d comments can be moderated at once", ErrValidation, s.cfg.BulkMaxIDs)
	}

	var (
		result  = &model.BulkResult{SkippedIDs: []int64{}}
		deleted int
	)
	reason = normalizeReason(reason)
	if err := s.repo.Postgres.WithinTx(ctx, func(ctx context.Context) error {
		result.ProcessedCount = 0
		result.SkippedIDs = result.SkippedIDs[:0]
		deleted = 0

		existing, err := s.repo.Postgres.Comment.ExistingIDs(ctx, ids)
		if err != nil {
			return err
		}
		found := make(map[int64]struct{}, len(existing))
		for _, id := range existing {
			found[id] = struct{}{}
		}

		for _, id := range ids {
			if _, ok := found[id]; !ok {
				result.SkippedIDs = append(result.SkippedIDs, id)
			}
		}
		if s.cfg.BulkStrict && len(result.SkippedIDs) > 0 {
			return fmt.Errorf("%w: comments %v do not exist", ErrNotFound, result.SkippedIDs)
		}

		for _, id := range ids {
			if _, ok := found[id]; !ok {
				continue
			}
			if _, err := s.apply(ctx, id, act, reason); err != nil {
				// A reply removed earlier in the batch together with its root.
				if act == ActionDelete && errors.Is(err, pgx.ErrNoRows) {
					result.ProcessedCount++
					continue
				}
				return err
			}
			if act == ActionDelete {
				deleted++
			}
			result.ProcessedCount++
		}

		return nil
	}); err != nil {
		if isDomainError(err) {
			return nil, err
		}

		s.logger.Sugar().Errorf("failed to %s %d comments in bulk: %s", act, len(ids), err.Error())
		return nil, ErrInternal
	}

	s.metrics.CommentsDeleted.Add(float64(deleted))
	s.metrics.ModerationActions.WithLabelValues(string(act), "bulk").Add(float64(result.ProcessedCount))
	s.logger.Info("comments moderated in bulk",
		zap.String("action", string(act)),
		zap.Int("processed", result.ProcessedCount),
		zap.Int64s("skipped", result.SkippedIDs),
		zap.String("moderator_id", actor.ID.String()),
	)

	return result, nil
}
