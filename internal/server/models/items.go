// Package models defines the persistent shapes of sitekeeper content: the
// collection items stored in the site repository and the locally-owned draft
// and settings rows.
package models

// StoryItem is one element of the stories collection document. The field
// names and the variants[0]=public, variants[1]=thumbnail convention are a
// durable contract shared with the static-site generator; do not rename.
//
// Timestamps stay as the strings the remote stored so that edits round-trip
// items byte-faithfully.
type StoryItem struct {
	Uploaded          string     `json:"uploaded"`
	ID                string     `json:"id"`
	Filename          string     `json:"filename"`
	Meta              StoryMeta  `json:"meta"`
	Variants          []string   `json:"variants,omitempty"`
	Playback          *Playback  `json:"playback,omitempty"`
	Thumbnail         string     `json:"thumbnail,omitempty"`
	RequireSignedURLs bool       `json:"requireSignedURLs"`
}

// IsVideo reports whether the item is a video story. The discriminant is the
// presence of HLS playback or a meta URL; images carry neither.
func (s *StoryItem) IsVideo() bool {
	return (s.Playback != nil && s.Playback.HLS != "") || s.Meta.URL != ""
}

// ThumbnailURL returns the best thumbnail: the explicit one for videos,
// variants[1] for images.
func (s *StoryItem) ThumbnailURL() string {
	if s.Thumbnail != "" {
		return s.Thumbnail
	}
	if len(s.Variants) > 1 {
		return s.Variants[1]
	}
	return ""
}

type StoryMeta struct {
	Alt     string   `json:"alt,omitempty"`
	Caption string   `json:"caption,omitempty"`
	Tags    []string `json:"tags"`
	URL     string   `json:"url,omitempty"`
	Title   *string  `json:"title,omitempty"`
}

type Playback struct {
	HLS string `json:"hls"`
}

// PhotoItem is one element of the photos collection document.
type PhotoItem struct {
	Uploaded          string    `json:"uploaded"`
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	Meta              PhotoMeta `json:"meta"`
	Variants          []string  `json:"variants"`
	RequireSignedURLs bool      `json:"requireSignedURLs"`
}

func (p *PhotoItem) ThumbnailURL() string {
	if len(p.Variants) > 1 {
		return p.Variants[1]
	}
	return ""
}

// PhotoMeta carries the photo's descriptive fields. Alt and Albums are
// required before any write; optional fields marshal as explicit nulls to
// match the stored contract.
type PhotoMeta struct {
	Ratio       float64  `json:"ratio"`
	Orientation string   `json:"orientation"`
	Caption     *string  `json:"caption"`
	Alt         string   `json:"alt"`
	Featured    bool     `json:"featured"`
	Albums      []string `json:"albums"`
	Location    *string  `json:"location"`
	Datetime    *string  `json:"datetime"`
}
