package drafts

import (
	"context"

	"github.com/drewsiph/sitekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, draft *models.Draft) (*models.Draft, error)
	GetByID(ctx context.Context, userID, id string) (*models.Draft, error)
	ListByUser(ctx context.Context, userID string) ([]models.Draft, error)
	Update(ctx context.Context, draft *models.Draft) (*models.Draft, error)
	Delete(ctx context.Context, userID, id string) error
}
