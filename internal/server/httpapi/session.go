package httpapi

import (
	"fmt"
	"net/http"

	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/server/auth"
)

type sessionRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	SessionToken string `json:"sessionToken"`
	User         string `json:"user"`
}

// createSession exchanges a host access token for a signed session token.
// The host token is verified by asking the remote API who it belongs to;
// the login becomes the user id owning drafts and settings.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Token == "" {
		s.writeError(w, fmt.Errorf("%w: token is required", common.ErrorValidation))
		return
	}

	login, err := s.remote(req.Token).CurrentUser(r.Context())
	if err != nil {
		s.writeError(w, common.ErrorUnauthorized)
		return
	}

	sessionToken, err := auth.GenerateToken(login, req.Token,
		[]byte(s.cfg.SecretKey), s.cfg.SessionValidityDuration)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, sessionResponse{SessionToken: sessionToken, User: login})
}
