package model

import "github.com/google/uuid"

// Actor is the already authenticated caller of an engine operation.
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
}

// Anonymous is used for read operations without an authenticated viewer.
var Anonymous = Actor{}

func (a Actor) IsAuthenticated() bool {
	return a.ID != uuid.Nil
}

func (a Actor) Owns(c *Comment) bool {
	return a.IsAuthenticated() && c.AuthorID == a.ID
}
