// Package stats derives cross-cutting views from the raw site content:
// dashboard counts, recent items and the unified activity feed. Everything
// here is a pure function of freshly fetched data; nothing is cached.
package stats

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/frontmatter"
	"github.com/drewsiph/sitekeeper/internal/github"
	"github.com/drewsiph/sitekeeper/internal/logging"
	"github.com/drewsiph/sitekeeper/internal/server/models"
)

// Source is the slice of the document gateway the read model needs.
type Source interface {
	ListDirectory(ctx context.Context, path string) ([]github.Entry, error)
	ReadFile(ctx context.Context, path string) (*github.File, error)
	ReadCollection(ctx context.Context, path string, items any) (string, error)
}

// publishedRe decides whether a post counts as published. It matches any
// digit string, so `feature: 0` counts too; that is the long-standing
// behavior downstream tooling depends on.
var publishedRe = regexp.MustCompile(`(?m)^feature:\s*\d+`)

const recentLimit = 5
const activityLimit = 10

type Dashboard struct {
	Notes          int `json:"notes"`
	Posts          int `json:"posts"`
	PublishedPosts int `json:"publishedPosts"`
	Stories        int `json:"stories"`
	StoryTags      int `json:"storyTags"`
	Photos         int `json:"photos"`
	PhotoAlbums    int `json:"photoAlbums"`

	RecentNotes   []FileEntry        `json:"recentNotes"`
	RecentPosts   []FileEntry        `json:"recentPosts"`
	RecentStories []models.StoryItem `json:"recentStories"`
	RecentPhotos  []models.PhotoItem `json:"recentPhotos"`
}

// FileEntry is a note or post as it appears in listings: derived date plus
// the path needed to open it.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Date string `json:"date"`
}

type Service struct {
	logger logging.Logger
}

func NewService(logger logging.Logger) *Service {
	return &Service{logger: logger}
}

// Dashboard assembles the landing-page stats in one pass over the remote
// content.
func (s *Service) Dashboard(ctx context.Context, src Source) (*Dashboard, error) {
	notes, err := src.ListDirectory(ctx, common.NotesDir)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	posts, err := src.ListDirectory(ctx, common.PostsDir)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	var stories []models.StoryItem
	if _, err := src.ReadCollection(ctx, common.StoriesPath, &stories); err != nil {
		return nil, fmt.Errorf("read stories: %w", err)
	}
	var photos []models.PhotoItem
	if _, err := src.ReadCollection(ctx, common.PhotosPath, &photos); err != nil {
		return nil, fmt.Errorf("read photos: %w", err)
	}

	published := 0
	for _, e := range posts {
		f, err := src.ReadFile(ctx, e.Path)
		if err != nil {
			s.logger.Warn(ctx, "skipping unreadable post", "path", e.Path, "error", err)
			continue
		}
		if publishedRe.MatchString(f.Body) {
			published++
		}
	}

	return &Dashboard{
		Notes:          len(notes),
		Posts:          len(posts),
		PublishedPosts: published,
		Stories:        len(stories),
		StoryTags:      len(storyTagSet(stories)),
		Photos:         len(photos),
		PhotoAlbums:    len(photoAlbumSet(photos)),
		RecentNotes:    recentFiles(notes, recentLimit),
		RecentPosts:    recentFiles(posts, recentLimit),
		RecentStories:  recentStories(stories, recentLimit),
		RecentPhotos:   recentPhotos(photos, recentLimit),
	}, nil
}

func storyTagSet(stories []models.StoryItem) map[string]struct{} {
	set := map[string]struct{}{}
	for _, s := range stories {
		for _, t := range s.Meta.Tags {
			set[t] = struct{}{}
		}
	}
	return set
}

func photoAlbumSet(photos []models.PhotoItem) map[string]struct{} {
	set := map[string]struct{}{}
	for _, p := range photos {
		for _, a := range p.Meta.Albums {
			set[a] = struct{}{}
		}
	}
	return set
}

// recentFiles sorts directory entries by filename-derived date, newest
// first. The sort is stable so ties keep their original listing order.
func recentFiles(entries []github.Entry, limit int) []FileEntry {
	out := make([]FileEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, FileEntry{
			Name: e.Name,
			Path: e.Path,
			Date: frontmatter.ExtractDate(e.Name),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func recentStories(stories []models.StoryItem, limit int) []models.StoryItem {
	out := make([]models.StoryItem, len(stories))
	copy(out, stories)
	sort.SliceStable(out, func(i, j int) bool {
		return parseUploaded(out[i].Uploaded).After(parseUploaded(out[j].Uploaded))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func recentPhotos(photos []models.PhotoItem, limit int) []models.PhotoItem {
	out := make([]models.PhotoItem, len(photos))
	copy(out, photos)
	sort.SliceStable(out, func(i, j int) bool {
		return parseUploaded(out[i].Uploaded).After(parseUploaded(out[j].Uploaded))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// parseUploaded reads the timestamp strings the media store produced.
// Unparseable values sort to the bottom rather than erroring.
func parseUploaded(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
