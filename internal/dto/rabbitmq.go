package dto

import (
	"time"

	"github.com/google/uuid"
)

type MQPostCreatedMsg struct {
	PostID    int64     `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	PostTitle string    `json:"post_title"`
	PostSlug  string    `json:"post_slug"`
	CreatedAt time.Time `json:"created_at"`
}

type MQPostDeletedMsg struct {
	PostID int64 `json:"post_id"`
}

type MQCommentReportedMsg struct {
	CommentID  int64     `json:"comment_id"`
	ArticleID  int64     `json:"article_id"`
	ReporterID uuid.UUID `json:"reporter_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
