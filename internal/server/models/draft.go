package models

import "time"

type DraftType string

const (
	DraftNote  DraftType = "NOTE"
	DraftPost  DraftType = "POST"
	DraftStory DraftType = "STORY"
)

// Draft is a locally-owned scratch record. Publishing reads its fields into
// a publish request and leaves the row untouched; the caller deletes it
// separately if desired.
type Draft struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Type      DraftType `json:"type"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Tags      string    `json:"tags,omitempty"`
	Language  string    `json:"language,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
