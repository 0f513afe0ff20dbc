package settings

import (
	"context"

	"github.com/drewsiph/sitekeeper/internal/server/models"
)

// Update carries the fields of a settings write; nil means "leave as is".
type Update struct {
	Theme            *string
	NoteTags         *[]string
	HiddenStoryFeeds *[]string
}

type Repository interface {
	// GetOrCreate returns the user's settings row, inserting the defaults
	// first if the user has none yet.
	GetOrCreate(ctx context.Context, userID string) (*models.Settings, error)
	Update(ctx context.Context, userID string, upd Update) (*models.Settings, error)
}
