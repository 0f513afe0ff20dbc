package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/drewsiph/sitekeeper/internal/common"
)

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	d, err := s.stats.Dashboard(r.Context(), remote)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) activity(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	windowDays := 0
	if v := r.URL.Query().Get("window"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || (parsed != 7 && parsed != 30 && parsed != 90) {
			s.writeError(w, fmt.Errorf("%w: window must be 7, 30 or 90", common.ErrorValidation))
			return
		}
		windowDays = parsed
	}

	events, err := s.stats.Activity(r.Context(), remote, windowDays)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) storyFeeds(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	feeds, err := s.stats.StoryFeeds(r.Context(), remote)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, feeds)
}
