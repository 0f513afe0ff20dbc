package models

// Settings is the single per-user settings row, upserted lazily on first
// read.
type Settings struct {
	UserID           string   `json:"-"`
	Theme            string   `json:"theme"`
	NoteTags         []string `json:"noteTags"`
	HiddenStoryFeeds []string `json:"hiddenStoryFeeds"`
}

// DefaultSettings are the values created on first read for a user.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:           userID,
		Theme:            "system",
		NoteTags:         []string{},
		HiddenStoryFeeds: []string{},
	}
}
