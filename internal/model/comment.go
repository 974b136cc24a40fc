package model

import (
	"time"

	"github.com/google/uuid"
)

type CommentStatus string

const (
	StatusPending  CommentStatus = "pending"
	StatusApproved CommentStatus = "approved"
	StatusRejected CommentStatus = "rejected"
)

func (s CommentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Comment struct {
	ID               int64         `json:"id"`
	ArticleID        int64         `json:"article_id"`
	AuthorID         uuid.UUID     `json:"author_id"`
	ParentID         *int64        `json:"parent_id"`
	Content          string        `json:"content"`
	Status           CommentStatus `json:"status"`
	Reported         bool          `json:"reported"`
	ModerationReason *string       `json:"moderation_reason"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// IsRoot reports whether the comment is attached directly to the article.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

type FullComment struct {
	Comment      Comment        `json:"comment"`
	Author       UserAuthor     `json:"author"`
	ContentHTML  string         `json:"content_html"`
	LikesCount   int64          `json:"likes_count"`
	UserLiked    bool           `json:"user_liked"`
	ReportsCount int64          `json:"reports_count"`
	Replies      []*FullComment `json:"replies,omitempty"`
	RepliesCount int            `json:"replies_count"`
}

// ModerationComment is a comment in the admin queue together with its article context.
type ModerationComment struct {
	FullComment
	ArticleTitle string `json:"article_title"`
	ArticleSlug  string `json:"article_slug"`
}

// UserCommentSummary is one row of the per-user moderation overview.
type UserCommentSummary struct {
	ID            int64         `json:"id"`
	ArticleID     int64         `json:"article_id"`
	ArticleTitle  string        `json:"article_title"`
	Content       string        `json:"content"`
	Status        CommentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	ReportsCount  int64         `json:"reports_count"`
	ReportReasons []string      `json:"report_reasons"`
}
