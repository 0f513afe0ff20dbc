package httpapi

import (
	"net/http"

	"github.com/drewsiph/sitekeeper/internal/server/repositories/settings"
)

type settingsRequest struct {
	Theme            *string   `json:"theme"`
	NoteTags         *[]string `json:"noteTags"`
	HiddenStoryFeeds *[]string `json:"hiddenStoryFeeds"`
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	stored, err := s.settings.GetOrCreate(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stored)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.settings.Update(r.Context(), claims.UserID, settings.Update{
		Theme:            req.Theme,
		NoteTags:         req.NoteTags,
		HiddenStoryFeeds: req.HiddenStoryFeeds,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.Theme != nil && s.theme != nil {
		s.theme.SetTheme(*req.Theme)
	}

	s.writeJSON(w, http.StatusOK, updated)
}
