package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/dbx"
	"github.com/drewsiph/sitekeeper/internal/server/models"
)

// PostgresRepository stores drafts. Every query carries the owner's userID,
// so one user can never read or touch another's rows.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, draft *models.Draft) (*models.Draft, error) {
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO drafts (id, user_id, type, title, content, tags, language, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		draft.ID, draft.UserID, draft.Type, draft.Title, draft.Content,
		draft.Tags, draft.Language, draft.Location).
		Scan(&draft.CreatedAt, &draft.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return draft, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Draft, error) {
	query :=
		`SELECT id, user_id, type, title, content, tags, language, location, created_at, updated_at
		 FROM drafts
		 WHERE id = $1 AND user_id = $2
		 `

	draft := &models.Draft{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&draft.ID, &draft.UserID, &draft.Type, &draft.Title, &draft.Content,
		&draft.Tags, &draft.Language, &draft.Location, &draft.CreatedAt, &draft.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return draft, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Draft, error) {
	query :=
		`SELECT id, user_id, type, title, content, tags, language, location, created_at, updated_at
		 FROM drafts
		 WHERE user_id = $1
		 ORDER BY updated_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	drafts := []models.Draft{}
	for rows.Next() {
		var d models.Draft
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Type, &d.Title, &d.Content,
			&d.Tags, &d.Language, &d.Location, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return drafts, nil
}

func (r *PostgresRepository) Update(ctx context.Context, draft *models.Draft) (*models.Draft, error) {
	query :=
		`UPDATE drafts
		 SET title = $1, content = $2, tags = $3, language = $4, location = $5, updated_at = now()
		 WHERE id = $6 AND user_id = $7
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		draft.Title, draft.Content, draft.Tags, draft.Language, draft.Location,
		draft.ID, draft.UserID).
		Scan(&draft.CreatedAt, &draft.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return draft, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query :=
		`DELETE FROM drafts
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
