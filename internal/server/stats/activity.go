package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/frontmatter"
	"github.com/drewsiph/sitekeeper/internal/server/models"
)

// Activity is one event in the unified feed across all four content types.
type Activity struct {
	Type      string    `json:"type"` // note, post, story or photo
	Title     string    `json:"title"`
	Path      string    `json:"path,omitempty"`
	ID        string    `json:"id,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Activity merges notes, posts, stories and photos into one feed sorted by
// best-available timestamp, newest first. windowDays of 0 means no window;
// otherwise items older than that many days are dropped. At most ten events
// are returned.
//
// For notes and posts the timestamp comes from the filename, which falls
// back to today when no date prefix matches; old undated files can therefore
// surface as recent. Known accuracy gap, kept as is.
func (s *Service) Activity(ctx context.Context, src Source, windowDays int) ([]Activity, error) {
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

	events := make([]Activity, 0, len(notes)+len(posts)+len(stories)+len(photos))
	for _, e := range notes {
		events = append(events, Activity{
			Type:      "note",
			Title:     e.Name,
			Path:      e.Path,
			Timestamp: fileTimestamp(e.Name),
		})
	}
	for _, e := range posts {
		events = append(events, Activity{
			Type:      "post",
			Title:     e.Name,
			Path:      e.Path,
			Timestamp: fileTimestamp(e.Name),
		})
	}
	for i := range stories {
		st := &stories[i]
		events = append(events, Activity{
			Type:      "story",
			Title:     st.Filename,
			ID:        st.ID,
			Thumbnail: st.ThumbnailURL(),
			Timestamp: parseUploaded(st.Uploaded),
		})
	}
	for i := range photos {
		p := &photos[i]
		events = append(events, Activity{
			Type:      "photo",
			Title:     p.Filename,
			ID:        p.ID,
			Thumbnail: p.ThumbnailURL(),
			Timestamp: parseUploaded(p.Uploaded),
		})
	}

	if windowDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -windowDays)
		kept := events[:0]
		for _, ev := range events {
			if !ev.Timestamp.Before(cutoff) {
				kept = append(kept, ev)
			}
		}
		events = kept
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if len(events) > activityLimit {
		events = events[:activityLimit]
	}
	return events, nil
}

func fileTimestamp(name string) time.Time {
	t, err := time.Parse("2006-01-02", frontmatter.ExtractDate(name))
	if err != nil {
		return time.Time{}
	}
	return t
}
