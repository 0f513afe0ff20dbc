package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drewsiph/sitekeeper/internal/cloudflare"
	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/github"
	"github.com/drewsiph/sitekeeper/internal/logging"
	"github.com/drewsiph/sitekeeper/internal/server/auth"
	"github.com/drewsiph/sitekeeper/internal/server/config"
	"github.com/drewsiph/sitekeeper/internal/server/models"
	"github.com/drewsiph/sitekeeper/internal/server/publish"
	"github.com/drewsiph/sitekeeper/internal/server/repositories/settings"
	"github.com/drewsiph/sitekeeper/internal/server/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	files      map[string]*github.File
	dirs       map[string][]github.Entry
	dispatches []map[string]string
	writes     []string
	writeErr   error
	user       string
	userErr    error
}

func (f *fakeRemote) ReadFile(ctx context.Context, path string) (*github.File, error) {
	file, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, common.ErrorNotFound)
	}
	return file, nil
}

func (f *fakeRemote) WriteFile(ctx context.Context, path, body, sha, message string) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.writes = append(f.writes, body)
	return "sha-next", nil
}

func (f *fakeRemote) DeleteFile(ctx context.Context, path, sha, message string) error {
	return f.writeErr
}

func (f *fakeRemote) ReadCollection(ctx context.Context, path string, items any) (string, error) {
	return "sha-col", nil
}

func (f *fakeRemote) WriteCollection(ctx context.Context, path string, items any, sha, message string) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	return "sha-next", nil
}

func (f *fakeRemote) DispatchWorkflow(ctx context.Context, workflowID string, inputs map[string]string) error {
	f.dispatches = append(f.dispatches, inputs)
	return nil
}

func (f *fakeRemote) ListDirectory(ctx context.Context, path string) ([]github.Entry, error) {
	return f.dirs[path], nil
}

func (f *fakeRemote) CurrentUser(ctx context.Context) (string, error) {
	return f.user, f.userErr
}

type fakeDrafts struct {
	list    []models.Draft
	byID    map[string]*models.Draft
	deleted []string
}

func (f *fakeDrafts) Create(ctx context.Context, d *models.Draft) (*models.Draft, error) {
	d.ID = "d-new"
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	return d, nil
}

func (f *fakeDrafts) GetByID(ctx context.Context, userID, id string) (*models.Draft, error) {
	d, ok := f.byID[id]
	if !ok || d.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

func (f *fakeDrafts) ListByUser(ctx context.Context, userID string) ([]models.Draft, error) {
	return f.list, nil
}

func (f *fakeDrafts) Update(ctx context.Context, d *models.Draft) (*models.Draft, error) {
	return d, nil
}

func (f *fakeDrafts) Delete(ctx context.Context, userID, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSettings struct{}

func (f *fakeSettings) GetOrCreate(ctx context.Context, userID string) (*models.Settings, error) {
	return models.DefaultSettings(userID), nil
}

func (f *fakeSettings) Update(ctx context.Context, userID string, upd settings.Update) (*models.Settings, error) {
	s := models.DefaultSettings(userID)
	if upd.Theme != nil {
		s.Theme = *upd.Theme
	}
	return s, nil
}

type fakeUploads struct{}

func (f *fakeUploads) UploadImage(ctx context.Context, filename string, data []byte, metadata any) (*cloudflare.UploadResult, error) {
	return &cloudflare.UploadResult{ID: "img-1", Filename: filename, Uploaded: time.Now()}, nil
}

func (f *fakeUploads) UploadVideo(ctx context.Context, filename string, data []byte) (*cloudflare.UploadResult, error) {
	return &cloudflare.UploadResult{ID: "vid-1", Filename: filename, Uploaded: time.Now()}, nil
}

func newTestServer(remote *fakeRemote, draftsRepo *fakeDrafts) *Server {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.GitHubOwner = "drewsiph"
	cfg.GitHubRepo = "site"

	logger := logging.NewJSONLogger()
	publisher := publish.NewService(&fakeUploads{}, nil, logger)

	srv := NewServer(cfg, logger, publisher, stats.NewService(logger), draftsRepo, &fakeSettings{})
	srv.remote = func(token string) Remote { return remote }
	srv.resources = func(token string) Remote { return remote }
	return srv
}

func sessionHeader(t *testing.T, srv *Server) string {
	t.Helper()
	token, err := auth.GenerateToken("drewsiph", "ghp_test", []byte(srv.cfg.SecretKey), time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, srv *Server, method, path, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware_RejectsMissingAndBadTokens(t *testing.T) {
	srv := newTestServer(&fakeRemote{}, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodGet, "/api/drafts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/drafts", "Bearer garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListDrafts(t *testing.T) {
	draftsRepo := &fakeDrafts{list: []models.Draft{{ID: "d1", Type: models.DraftNote, Content: "x"}}}
	srv := newTestServer(&fakeRemote{}, draftsRepo)

	rec := doJSON(t, srv, http.MethodGet, "/api/drafts", sessionHeader(t, srv), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Draft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].ID)
}

func TestCreateDraft_RejectsUnknownType(t *testing.T) {
	srv := newTestServer(&fakeRemote{}, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodPost, "/api/drafts", sessionHeader(t, srv),
		map[string]string{"type": "RECIPE", "content": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishNote_Accepted(t *testing.T) {
	remote := &fakeRemote{}
	srv := newTestServer(remote, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodPost, "/api/publish/note", sessionHeader(t, srv),
		map[string]any{"content": "hello"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp acceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
	require.Len(t, remote.dispatches, 1)
	assert.Equal(t, "hello", remote.dispatches[0]["content"])
}

func TestPublishNote_ValidationRejected(t *testing.T) {
	remote := &fakeRemote{}
	srv := newTestServer(remote, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodPost, "/api/publish/note", sessionHeader(t, srv),
		map[string]any{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, remote.dispatches)
}

func TestUpdatePost_ConflictMapsTo409(t *testing.T) {
	remote := &fakeRemote{writeErr: fmt.Errorf("write: %w", common.ErrorConflict)}
	srv := newTestServer(remote, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodPut, "/api/github/posts", sessionHeader(t, srv),
		map[string]string{"path": "_posts/a.md", "lockToken": "stale", "content": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestGetNote_NotFoundMapsTo404(t *testing.T) {
	srv := newTestServer(&fakeRemote{}, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodGet, "/api/github/notes?path=_notes/missing.md", sessionHeader(t, srv), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetNote_ReturnsParsedFile(t *testing.T) {
	remote := &fakeRemote{files: map[string]*github.File{
		"_notes/2024-01-01-a.md": {Body: "---\ntags:\n  - note\n---\n\nhello", SHA: "sha-1"},
	}}
	srv := newTestServer(remote, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodGet, "/api/github/notes?path=_notes/2024-01-01-a.md", sessionHeader(t, srv), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp fileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sha-1", resp.LockToken)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, "note", resp.Metadata["tags"])
}

func TestCreateSession(t *testing.T) {
	remote := &fakeRemote{user: "drewsiph"}
	srv := newTestServer(remote, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodPost, "/api/session", "", map[string]string{"token": "ghp_test"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "drewsiph", resp.User)

	claims, err := auth.ParseToken(resp.SessionToken, []byte(srv.cfg.SecretKey))
	require.NoError(t, err)
	assert.Equal(t, "ghp_test", claims.HostToken)
}

func TestCreateSession_BadHostToken(t *testing.T) {
	remote := &fakeRemote{userErr: fmt.Errorf("401")}
	srv := newTestServer(remote, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodPost, "/api/session", "", map[string]string{"token": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublishStatus_EmptyTextClearsStatus(t *testing.T) {
	remote := &fakeRemote{files: map[string]*github.File{
		"status.txt": {Body: "2026-08-01T09:00:00+00:00\nout hiking", SHA: "sha-1"},
	}}
	srv := newTestServer(remote, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodPost, "/api/status", sessionHeader(t, srv),
		map[string]string{"text": ""})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, remote.writes, 1)
	assert.True(t, strings.HasSuffix(remote.writes[0], "\n"))
}

func TestPublishStatus_MissingTextRejected(t *testing.T) {
	remote := &fakeRemote{}
	srv := newTestServer(remote, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodPost, "/api/status", sessionHeader(t, srv),
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, remote.writes)
}

func TestGetStatus(t *testing.T) {
	remote := &fakeRemote{files: map[string]*github.File{
		"status.txt": {Body: "2026-08-01T09:00:00+00:00\nout hiking", SHA: "sha-1"},
	}}
	srv := newTestServer(remote, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodGet, "/api/status", sessionHeader(t, srv), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-08-01T09:00:00+00:00", resp.Date)
	assert.Equal(t, "out hiking", resp.Text)
	assert.Equal(t, "2026-08-01T09:00:00+00:00\nout hiking", resp.Raw)
}

func TestGetStatus_NotFoundMapsTo404(t *testing.T) {
	srv := newTestServer(&fakeRemote{}, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodGet, "/api/status", sessionHeader(t, srv), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActivity_RejectsBadWindow(t *testing.T) {
	srv := newTestServer(&fakeRemote{}, &fakeDrafts{})

	rec := doJSON(t, srv, http.MethodGet, "/api/activity?window=13", sessionHeader(t, srv), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
