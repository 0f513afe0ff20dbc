package drafts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var draftColumns = []string{
	"id", "user_id", "type", "title", "content", "tags", "language", "location", "created_at", "updated_at",
}

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+drafts\s*\(.*\)\s*VALUES.*RETURNING\s+created_at,\s*updated_at\s*$`).
		WithArgs(sqlmock.AnyArg(), "u1", models.DraftNote, "", "hello", "note", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	d := &models.Draft{UserID: "u1", Type: models.DraftNote, Content: "hello", Tags: "note"}
	got, err := repo.Create(context.Background(), d)
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, now, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+drafts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`).
		WithArgs("missing", "u1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_ScopedToOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+drafts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`).
		WithArgs("d1", "u1").
		WillReturnRows(sqlmock.NewRows(draftColumns).
			AddRow("d1", "u1", "POST", "Title", "body", "", "", "", now, now))

	got, err := repo.GetByID(context.Background(), "u1", "d1")
	require.NoError(t, err)
	assert.Equal(t, models.DraftPost, got.Type)
	assert.Equal(t, "Title", got.Title)
}

func TestListByUser_OrderedByUpdatedAtDesc(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+drafts\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+updated_at\s+DESC\s*$`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(draftColumns).
			AddRow("d2", "u1", "NOTE", "", "newer", "", "", "", now, now).
			AddRow("d1", "u1", "NOTE", "", "older", "", "", "", now, now.Add(-time.Hour)))

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].Content)
}

func TestListByUser_EmptyIsNotAnError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+drafts\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(draftColumns))

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestUpdate_NotFoundForForeignDraft(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE\s+drafts\s+SET\s+.*WHERE\s+id\s*=\s*\$6\s+AND\s+user_id\s*=\s*\$7`).
		WillReturnError(sql.ErrNoRows)

	d := &models.Draft{ID: "d1", UserID: "intruder", Content: "x"}
	_, err := repo.Update(context.Background(), d)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+drafts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs("d1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "u1", "d1"))
}

func TestDelete_ZeroRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+drafts`).
		WithArgs("gone", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u1", "gone")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate_DBErrorIsWrapped(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+drafts`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Draft{UserID: "u1", Type: models.DraftNote, Content: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
