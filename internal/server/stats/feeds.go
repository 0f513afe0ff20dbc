package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/drewsiph/sitekeeper/internal/common"
)

// Feed is one story feed document living under the feeds directory.
type Feed struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
}

// StoryFeeds lists the per-topic story feeds. Feed files are named
// stories-<topic>.json; the display name is the title-cased topic.
func (s *Service) StoryFeeds(ctx context.Context, src Source) ([]Feed, error) {
	entries, err := src.ListDirectory(ctx, common.FeedsDir)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	feeds := make([]Feed, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, "stories-") || !strings.HasSuffix(e.Name, ".json") {
			continue
		}
		stem := strings.TrimSuffix(strings.TrimPrefix(e.Name, "stories-"), ".json")
		feeds = append(feeds, Feed{Filename: e.Name, Name: titleCase(stem)})
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].Name < feeds[j].Name })
	return feeds, nil
}

func titleCase(stem string) string {
	words := strings.Split(stem, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
