package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/BloggingApp/comment-service/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

// resolveParent returns the parent id to store for a new comment on articleID.
// Replies to replies are attached to the reply's own parent so threads never nest deeper than one level.
func resolveParent(ctx context.Context, comments postgres.Comment, articleID int64, parentID *int64) (*int64, error) {
	if parentID == nil {
		return nil, nil
	}

	parent, err := comments.FindByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: comment %d does not exist", ErrInvalidParent, *parentID)
		}
		return nil, err
	}

	if parent.ArticleID != articleID {
		return nil, fmt.Errorf("%w: comment %d belongs to another article", ErrInvalidParent, parent.ID)
	}

	if !parent.IsRoot() {
		rootID := *parent.ParentID
		return &rootID, nil
	}

	return &parent.ID, nil
}
