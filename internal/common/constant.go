// Package common contains shared constants and sentinel errors used across
// sitekeeper components.
package common

// Well-known paths inside the site repository. These are part of the durable
// on-disk contract: the static-site generator reads the same locations.
const (
	NotesDir    = "_notes"
	PostsDir    = "_posts"
	FeedsDir    = "feeds"
	StoriesPath = "_data/stories.json"
	PhotosPath  = "_data/photos.json"
	StatusPath  = "status.txt"
)

// Workflow IDs dispatched in the site repository.
const (
	NotesWorkflow = "notes.yml"
	PostsWorkflow = "posts.yml"
	MediaWorkflow = "cf2.yml"
)

// MaxUploadSize is the per-asset size cap enforced before any upload call.
const MaxUploadSize = 25 << 20 // 25 MiB
