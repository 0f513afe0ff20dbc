package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/frontmatter"
	"github.com/drewsiph/sitekeeper/internal/server/models"
	"github.com/drewsiph/sitekeeper/internal/server/publish"
)

type fileResponse struct {
	Path      string            `json:"path"`
	LockToken string            `json:"lockToken"`
	Raw       string            `json:"raw"`
	Metadata  map[string]string `json:"metadata"`
	Content   string            `json:"content"`
}

type tokenResponse struct {
	LockToken string `json:"lockToken"`
}

type deleteRequest struct {
	Path      string `json:"path"`
	LockToken string `json:"lockToken"`
}

// readOrList serves both shapes of a content GET: with ?path= it returns
// one file plus its lock token, without it the directory listing.
func (s *Server) readOrList(w http.ResponseWriter, r *http.Request, dir string) {
	_, remote := s.session(r)

	path := r.URL.Query().Get("path")
	if path == "" {
		entries, err := remote.ListDirectory(r.Context(), dir)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, entries)
		return
	}

	file, err := remote.ReadFile(r.Context(), path)
	if err != nil {
		s.writeError(w, err)
		return
	}

	meta, body := frontmatter.Parse(file.Body)
	s.writeJSON(w, http.StatusOK, fileResponse{
		Path:      path,
		LockToken: file.SHA,
		Raw:       file.Body,
		Metadata:  meta.Map(),
		Content:   body,
	})
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	s.readOrList(w, r, common.NotesDir)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	s.readOrList(w, r, common.PostsDir)
}

type noteUpdateRequest struct {
	Path      string   `json:"path"`
	LockToken string   `json:"lockToken"`
	Raw       string   `json:"raw"`
	Tags      []string `json:"tags"`
	Location  string   `json:"location"`
	Content   string   `json:"content"`
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	var req noteUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Path == "" || req.LockToken == "" {
		s.writeError(w, fmt.Errorf("%w: path and lockToken are required", common.ErrorValidation))
		return
	}

	token, err := s.publisher.UpdateNote(r.Context(), remote,
		req.Path, req.LockToken, req.Raw, req.Tags, req.Location, req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{LockToken: token})
}

type postUpdateRequest struct {
	Path      string `json:"path"`
	LockToken string `json:"lockToken"`
	Content   string `json:"content"`
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	var req postUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Path == "" || req.LockToken == "" {
		s.writeError(w, fmt.Errorf("%w: path and lockToken are required", common.ErrorValidation))
		return
	}

	token, err := s.publisher.UpdatePost(r.Context(), remote, req.Path, req.LockToken, req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{LockToken: token})
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	s.deleteContent(w, r, s.publisher.DeleteNote)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	s.deleteContent(w, r, s.publisher.DeletePost)
}

func (s *Server) deleteContent(w http.ResponseWriter, r *http.Request,
	del func(ctx context.Context, gw publish.Gateway, path, sha string) error) {
	_, remote := s.session(r)

	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Path == "" || req.LockToken == "" {
		s.writeError(w, fmt.Errorf("%w: path and lockToken are required", common.ErrorValidation))
		return
	}

	if err := del(r.Context(), remote, req.Path, req.LockToken); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

type storiesResponse struct {
	Items     []models.StoryItem `json:"items"`
	LockToken string             `json:"lockToken"`
}

type storiesUpdateRequest struct {
	Items     []models.StoryItem `json:"items"`
	LockToken string             `json:"lockToken"`
}

func (s *Server) getStories(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	items := []models.StoryItem{}
	token, err := remote.ReadCollection(r.Context(), common.StoriesPath, &items)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, storiesResponse{Items: items, LockToken: token})
}

func (s *Server) updateStories(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	var req storiesUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.publisher.UpdateStories(r.Context(), remote, req.Items, req.LockToken)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{LockToken: token})
}

type photosResponse struct {
	Items     []models.PhotoItem `json:"items"`
	LockToken string             `json:"lockToken"`
}

type photosUpdateRequest struct {
	Items     []models.PhotoItem `json:"items"`
	LockToken string             `json:"lockToken"`
}

func (s *Server) getPhotos(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	items := []models.PhotoItem{}
	token, err := remote.ReadCollection(r.Context(), common.PhotosPath, &items)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, photosResponse{Items: items, LockToken: token})
}

func (s *Server) updatePhotos(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	var req photosUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.publisher.UpdatePhotos(r.Context(), remote, req.Items, req.LockToken)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{LockToken: token})
}
