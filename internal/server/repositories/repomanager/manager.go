package repomanager

import (
	"context"
	"database/sql"

	"github.com/drewsiph/sitekeeper/internal/dbx"
	"github.com/drewsiph/sitekeeper/internal/server/repositories/drafts"
	"github.com/drewsiph/sitekeeper/internal/server/repositories/settings"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Drafts(db dbx.DBTX) drafts.Repository
	Settings(db dbx.DBTX) settings.Repository
}
