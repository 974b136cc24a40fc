package service

import (
	"context"
	"testing"

	"github.com/BloggingApp/comment-service/internal/dto"
	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModerationAction(t *testing.T) {
	for _, raw := range []string{"approve", "reject", "unreport", "delete", " Approve "} {
		_, err := ParseModerationAction(raw)
		require.NoError(t, err, raw)
	}

	_, err := ParseModerationAction("publish")
	require.ErrorIs(t, err, ErrInvalidAction)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(model.StatusPending, model.StatusApproved))
	assert.True(t, canTransition(model.StatusPending, model.StatusRejected))
	assert.True(t, canTransition(model.StatusApproved, model.StatusRejected))
	assert.True(t, canTransition(model.StatusRejected, model.StatusApproved))
	assert.True(t, canTransition(model.StatusApproved, model.StatusApproved))
	assert.False(t, canTransition(model.StatusApproved, model.StatusPending))
	assert.False(t, canTransition(model.StatusRejected, model.StatusPending))
}

func TestModerate(t *testing.T) {
	cfg := testConfig()
	cfg.AutoApprove = false
	env := newTestEnv(t, cfg)
	env.addArticle(t, 1)
	ctx := context.Background()
	moderator := admin()

	comment, err := env.service.Comment.Create(ctx, user(), dto.CreateCommentDto{ArticleID: 1, Content: "x"})
	require.NoError(t, err)
	_, err = env.service.Report.Create(ctx, user(), comment.ID, dto.ReportCommentDto{})
	require.NoError(t, err)

	_, err = env.service.Moderation.Moderate(ctx, moderator, comment.ID, "publish", nil)
	require.ErrorIs(t, err, ErrInvalidAction)

	_, err = env.service.Moderation.Moderate(ctx, user(), comment.ID, "approve", nil)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.service.Moderation.Moderate(ctx, moderator, 999, "approve", nil)
	require.ErrorIs(t, err, ErrNotFound)

	approved, err := env.service.Moderation.Moderate(ctx, moderator, comment.ID, "approve", stringPtr("looks fine"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.False(t, approved.Reported)
	require.NotNil(t, approved.ModerationReason)
	assert.Equal(t, "looks fine", *approved.ModerationReason)

	again, err := env.service.Moderation.Moderate(ctx, moderator, comment.ID, "approve", nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, again.Status)
	assert.Equal(t, "looks fine", *again.ModerationReason)

	rejected, err := env.service.Moderation.Moderate(ctx, moderator, comment.ID, "reject", stringPtr("off topic"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)
	assert.Equal(t, "off topic", *rejected.ModerationReason)

	reapproved, err := env.service.Moderation.Moderate(ctx, moderator, comment.ID, "approve", stringPtr("  "))
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, reapproved.Status)
	assert.Equal(t, "off topic", *reapproved.ModerationReason)
}

func TestModerate_UnreportKeepsStatus(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.addArticle(t, 1)
	ctx := context.Background()

	comment, err := env.service.Comment.Create(ctx, user(), dto.CreateCommentDto{ArticleID: 1, Content: "x"})
	require.NoError(t, err)
	_, err = env.service.Report.Create(ctx, user(), comment.ID, dto.ReportCommentDto{})
	require.NoError(t, err)

	unreported, err := env.service.Moderation.Moderate(ctx, admin(), comment.ID, "unreport", nil)
	require.NoError(t, err)
	assert.False(t, unreported.Reported)
	assert.Equal(t, model.StatusApproved, unreported.Status)
}

func TestModerate_DeleteCascades(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.addArticle(t, 1)
	ctx := context.Background()

	root, err := env.service.Comment.Create(ctx, user(), dto.CreateCommentDto{ArticleID: 1, Content: "root"})
	require.NoError(t, err)
	_, err = env.service.Comment.Create(ctx, user(), dto.CreateCommentDto{ArticleID: 1, ParentID: int64Ptr(root.ID), Content: "reply"})
	require.NoError(t, err)

	deleted, err := env.service.Moderation.Moderate(ctx, admin(), root.ID, "delete", stringPtr("ignored"))
	require.NoError(t, err)
	require.Nil(t, deleted)
	require.Equal(t, 0, env.store.commentCount())
}

func TestFindForModeration(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.addArticle(t, 1)
	ctx := context.Background()
	moderator := admin()

	first, err := env.service.Comment.Create(ctx, user(), dto.CreateCommentDto{ArticleID: 1, Content: "first"})
	require.NoError(t, err)
	second, err := env.service.Comment.Create(ctx, user(), dto.CreateCommentDto{ArticleID: 1, Content: "second"})
	require.NoError(t, err)
	_, err = env.service.Moderation.Moderate(ctx, moderator, second.ID, "reject", nil)
	require.NoError(t, err)
	_, err = env.service.Report.Create(ctx, user(), first.ID, dto.ReportCommentDto{})
	require.NoError(t, err)

	_, err = env.service.Moderation.FindForModeration(ctx, user(), dto.GetModerationCommentsDto{})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.service.Moderation.FindForModeration(ctx, moderator, dto.GetModerationCommentsDto{Status: "hidden"})
	require.ErrorIs(t, err, ErrValidation)

	all, err := env.service.Moderation.FindForModeration(ctx, moderator, dto.GetModerationCommentsDto{Status: "all"})
	require.NoError(t, err)
	require.Len(t, all.Comments, 2)
	assert.Equal(t, 50, all.PerPage)
	assert.Equal(t, second.ID, all.Comments[0].Comment.ID)
	assert.Equal(t, "Article 1", all.Comments[0].ArticleTitle)
	assert.Equal(t, "article-1", all.Comments[0].ArticleSlug)

	rejected, err := env.service.Moderation.FindForModeration(ctx, moderator, dto.GetModerationCommentsDto{Status: "rejected", PerPage: 500})
	require.NoError(t, err)
	require.Len(t, rejected.Comments, 1)
	assert.Equal(t, 100, rejected.PerPage)
	assert.Equal(t, int64(1), rejected.Total)

	reported, err := env.service.Moderation.FindForModeration(ctx, moderator, dto.GetModerationCommentsDto{Reported: true})
	require.NoError(t, err)
	require.Len(t, reported.Comments, 1)
	assert.Equal(t, first.ID, reported.Comments[0].Comment.ID)
	assert.Equal(t, int64(1), reported.Comments[0].ReportsCount)
}

func TestFindUserComments(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.addArticle(t, 1)
	ctx := context.Background()
	author := user()

	comment, err := env.service.Comment.Create(ctx, author, dto.CreateCommentDto{ArticleID: 1, Content: "x"})
	require.NoError(t, err)
	_, err = env.service.Comment.Create(ctx, author, dto.CreateCommentDto{ArticleID: 1, Content: "y"})
	require.NoError(t, err)
	_, err = env.service.Comment.Create(ctx, user(), dto.CreateCommentDto{ArticleID: 1, Content: "not theirs"})
	require.NoError(t, err)
	_, err = env.service.Report.Create(ctx, user(), comment.ID, dto.ReportCommentDto{Reason: "spam"})
	require.NoError(t, err)
	_, err = env.service.Report.Create(ctx, user(), comment.ID, dto.ReportCommentDto{Reason: "harassment"})
	require.NoError(t, err)
	_, err = env.service.Report.Create(ctx, user(), comment.ID, dto.ReportCommentDto{Reason: "spam"})
	require.NoError(t, err)

	_, err = env.service.Moderation.FindUserComments(ctx, user(), author.ID)
	require.ErrorIs(t, err, ErrForbidden)

	summaries, err := env.service.Moderation.FindUserComments(ctx, admin(), author.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "y", summaries[0].Content)
	assert.Empty(t, summaries[0].ReportReasons)
	assert.NotNil(t, summaries[0].ReportReasons)
	assert.Equal(t, int64(3), summaries[1].ReportsCount)
	assert.ElementsMatch(t, []string{"spam", "harassment"}, summaries[1].ReportReasons)
	assert.Equal(t, "Article 1", summaries[1].ArticleTitle)
}
