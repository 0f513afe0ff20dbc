// Package httpapi exposes the application over a JSON HTTP API. Handlers
// are thin: they decode the request, build a per-session remote client from
// the caller's claims and delegate to the domain services.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/drewsiph/sitekeeper/internal/github"
	"github.com/drewsiph/sitekeeper/internal/logging"
	"github.com/drewsiph/sitekeeper/internal/server/config"
	"github.com/drewsiph/sitekeeper/internal/server/publish"
	"github.com/drewsiph/sitekeeper/internal/server/repositories/drafts"
	"github.com/drewsiph/sitekeeper/internal/server/repositories/settings"
	"github.com/drewsiph/sitekeeper/internal/server/stats"
)

// Remote is everything a handler may do against the site repository on the
// caller's behalf.
type Remote interface {
	publish.Gateway
	ListDirectory(ctx context.Context, path string) ([]github.Entry, error)
	CurrentUser(ctx context.Context) (string, error)
}

// ThemeState is the process-wide theme; updated when a settings write
// changes the theme.
type ThemeState interface {
	Theme() string
	SetTheme(theme string)
}

type Server struct {
	cfg       *config.Config
	logger    logging.Logger
	publisher *publish.Service
	stats     *stats.Service
	drafts    drafts.Repository
	settings  settings.Repository
	theme     ThemeState

	// remote builds a content-repository client for one session's host
	// token; resources does the same for the resources repository.
	// Both are replaced in tests.
	remote    func(token string) Remote
	resources func(token string) Remote
}

// SetThemeState attaches the shared theme state. Optional; without it theme
// changes only persist to settings.
func (s *Server) SetThemeState(state ThemeState) {
	s.theme = state
}

func NewServer(
	cfg *config.Config,
	logger logging.Logger,
	publisher *publish.Service,
	statsSvc *stats.Service,
	draftsRepo drafts.Repository,
	settingsRepo settings.Repository,
) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		publisher: publisher,
		stats:     statsSvc,
		drafts:    draftsRepo,
		settings:  settingsRepo,
	}
	s.remote = func(token string) Remote {
		return github.NewClient(cfg.GitHubOwner, cfg.GitHubRepo, token,
			github.WithBaseURL(cfg.GitHubAPIBaseURL))
	}
	resourcesRepo := cfg.GitHubResourcesRepo
	if resourcesRepo == "" {
		resourcesRepo = cfg.GitHubRepo
	}
	s.resources = func(token string) Remote {
		return github.NewClient(cfg.GitHubOwner, resourcesRepo, token,
			github.WithBaseURL(cfg.GitHubAPIBaseURL))
	}
	return s
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/session", s.createSession).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/drafts", s.listDrafts).Methods(http.MethodGet)
	authed.HandleFunc("/drafts", s.createDraft).Methods(http.MethodPost)
	authed.HandleFunc("/drafts/{id}", s.getDraft).Methods(http.MethodGet)
	authed.HandleFunc("/drafts/{id}", s.updateDraft).Methods(http.MethodPut)
	authed.HandleFunc("/drafts/{id}", s.deleteDraft).Methods(http.MethodDelete)

	authed.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)
	authed.HandleFunc("/settings", s.updateSettings).Methods(http.MethodPut)

	authed.HandleFunc("/dashboard/stats", s.dashboard).Methods(http.MethodGet)
	authed.HandleFunc("/activity", s.activity).Methods(http.MethodGet)
	authed.HandleFunc("/story-feeds", s.storyFeeds).Methods(http.MethodGet)

	authed.HandleFunc("/github/notes", s.getNote).Methods(http.MethodGet)
	authed.HandleFunc("/github/notes", s.updateNote).Methods(http.MethodPut)
	authed.HandleFunc("/github/notes", s.deleteNote).Methods(http.MethodDelete)
	authed.HandleFunc("/github/posts", s.getPost).Methods(http.MethodGet)
	authed.HandleFunc("/github/posts", s.updatePost).Methods(http.MethodPut)
	authed.HandleFunc("/github/posts", s.deletePost).Methods(http.MethodDelete)
	authed.HandleFunc("/github/stories", s.getStories).Methods(http.MethodGet)
	authed.HandleFunc("/github/stories", s.updateStories).Methods(http.MethodPut)
	authed.HandleFunc("/github/photos", s.getPhotos).Methods(http.MethodGet)
	authed.HandleFunc("/github/photos", s.updatePhotos).Methods(http.MethodPut)

	authed.HandleFunc("/publish/note", s.publishNote).Methods(http.MethodPost)
	authed.HandleFunc("/publish/post", s.publishPost).Methods(http.MethodPost)
	authed.HandleFunc("/publish/story", s.publishStory).Methods(http.MethodPost)
	authed.HandleFunc("/publish/photo", s.publishPhoto).Methods(http.MethodPost)
	authed.HandleFunc("/publish/photos", s.publishPhotoBatch).Methods(http.MethodPost)

	authed.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	authed.HandleFunc("/status", s.publishStatus).Methods(http.MethodPost)

	return r
}
