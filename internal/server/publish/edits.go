package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/frontmatter"
	"github.com/drewsiph/sitekeeper/internal/server/models"
)

// Direct edit/delete flows on already-published documents. The caller must
// pass the lock token it fetched in the same session. A conflict surfaces
// verbatim; re-fetching and retrying here could clobber a legitimate
// concurrent edit.

// UpdateNote rewrites only the tags and location keys of the note's
// front-matter plus the body, leaving all other metadata lines untouched,
// and writes the result back under the given token.
func (s *Service) UpdateNote(ctx context.Context, gw Gateway, path, sha, raw string, tags []string, location, body string) (string, error) {
	updated := frontmatter.Rewrite(raw, tags, location, body)
	return gw.WriteFile(ctx, path, updated, sha, "Update note via web app")
}

// DeleteNote removes a published note file.
func (s *Service) DeleteNote(ctx context.Context, gw Gateway, path, sha string) error {
	return gw.DeleteFile(ctx, path, sha, "Delete note via web app")
}

// UpdatePost replaces the full body of a published post file.
func (s *Service) UpdatePost(ctx context.Context, gw Gateway, path, sha, content string) (string, error) {
	return gw.WriteFile(ctx, path, content, sha, "Update post via web app")
}

// DeletePost removes a published post file.
func (s *Service) DeletePost(ctx context.Context, gw Gateway, path, sha string) error {
	return gw.DeleteFile(ctx, path, sha, "Delete post via web app")
}

// UpdateStories writes the full stories array back under the given token.
func (s *Service) UpdateStories(ctx context.Context, gw Gateway, items []models.StoryItem, sha string) (string, error) {
	return gw.WriteCollection(ctx, common.StoriesPath, items, sha, "Update stories via web app")
}

// UpdatePhotos writes the full photos array back under the given token.
func (s *Service) UpdatePhotos(ctx context.Context, gw Gateway, items []models.PhotoItem, sha string) (string, error) {
	return gw.WriteCollection(ctx, common.PhotosPath, items, sha, "Update photos via web app")
}

// PublishStatus writes the two-line status file (timestamp, then text) to
// the resources repository. The current token is fetched immediately before
// the write; a missing file simply means a create.
func (s *Service) PublishStatus(ctx context.Context, gw Gateway, text string, at time.Time) error {
	content := at.Format("2006-01-02T15:04:05-07:00") + "\n" + text

	sha := ""
	f, err := gw.ReadFile(ctx, common.StatusPath)
	switch {
	case err == nil:
		sha = f.SHA
	case errors.Is(err, common.ErrorNotFound):
		// first status ever
	default:
		return fmt.Errorf("reading current status: %w", err)
	}

	if _, err := gw.WriteFile(ctx, common.StatusPath, content, sha, "Update status via web app"); err != nil {
		return err
	}
	s.logger.Info(ctx, "status updated", "at", at)
	return nil
}
