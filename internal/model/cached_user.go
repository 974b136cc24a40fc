package model

import "github.com/google/uuid"

// CachedUser is the local copy of a user's public profile, refreshed from user-service events.
type CachedUser struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
}

// UserAuthor is what comment read models expose about their author.
type UserAuthor struct {
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}
