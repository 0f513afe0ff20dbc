package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/drewsiph/sitekeeper/internal/dbx"
	"github.com/drewsiph/sitekeeper/internal/server/models"
)

// PostgresRepository stores one settings row per user. The string-list
// fields live in jsonb columns.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID string) (*models.Settings, error) {
	s, err := r.get(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return r.insertDefaults(ctx, userID)
}

func (r *PostgresRepository) get(ctx context.Context, userID string) (*models.Settings, error) {
	query :=
		`SELECT user_id, theme, note_tags, hidden_story_feeds
		 FROM settings
		 WHERE user_id = $1
		 `

	s := &models.Settings{}
	var tags, feeds []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.UserID, &s.Theme, &tags, &feeds)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tags, &s.NoteTags); err != nil {
		return nil, fmt.Errorf("decode note_tags: %w", err)
	}
	if err := json.Unmarshal(feeds, &s.HiddenStoryFeeds); err != nil {
		return nil, fmt.Errorf("decode hidden_story_feeds: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) insertDefaults(ctx context.Context, userID string) (*models.Settings, error) {
	s := models.DefaultSettings(userID)

	query :=
		`INSERT INTO settings (user_id, theme, note_tags, hidden_story_feeds)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO NOTHING
		 `

	tags, _ := json.Marshal(s.NoteTags)
	feeds, _ := json.Marshal(s.HiddenStoryFeeds)

	if _, err := r.db.ExecContext(ctx, query, s.UserID, s.Theme, tags, feeds); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	// a concurrent first read may have inserted its own row; re-read so both
	// callers see the stored values
	stored, err := r.get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID string, upd Update) (*models.Settings, error) {
	current, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Theme != nil {
		current.Theme = *upd.Theme
	}
	if upd.NoteTags != nil {
		current.NoteTags = *upd.NoteTags
	}
	if upd.HiddenStoryFeeds != nil {
		current.HiddenStoryFeeds = *upd.HiddenStoryFeeds
	}

	query :=
		`UPDATE settings
		 SET theme = $1, note_tags = $2, hidden_story_feeds = $3
		 WHERE user_id = $4
		 `

	tags, _ := json.Marshal(current.NoteTags)
	feeds, _ := json.Marshal(current.HiddenStoryFeeds)

	if _, err := r.db.ExecContext(ctx, query, current.Theme, tags, feeds, userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return current, nil
}
