package model

import (
	"time"

	"github.com/google/uuid"
)

// CachedArticle is the local copy of a published article kept in sync from post-service events.
type CachedArticle struct {
	ID        int64     `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
