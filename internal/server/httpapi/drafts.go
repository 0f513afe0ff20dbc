package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/server/models"
)

type draftRequest struct {
	Type     models.DraftType `json:"type"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Tags     string           `json:"tags"`
	Language string           `json:"language"`
	Location string           `json:"location"`
}

func (req draftRequest) validType() bool {
	switch req.Type {
	case models.DraftNote, models.DraftPost, models.DraftStory:
		return true
	}
	return false
}

func (s *Server) listDrafts(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	list, err := s.drafts.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) createDraft(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if !req.validType() {
		s.writeError(w, fmt.Errorf("%w: unknown draft type %q", common.ErrorValidation, req.Type))
		return
	}

	draft := &models.Draft{
		UserID:   claims.UserID,
		Type:     req.Type,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		Language: req.Language,
		Location: req.Location,
	}
	created, err := s.drafts.Create(r.Context(), draft)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	draft, err := s.drafts.GetByID(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, draft)
}

func (s *Server) updateDraft(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	draft := &models.Draft{
		ID:       mux.Vars(r)["id"],
		UserID:   claims.UserID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		Language: req.Language,
		Location: req.Location,
	}
	updated, err := s.drafts.Update(r.Context(), draft)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteDraft(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	if err := s.drafts.Delete(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
