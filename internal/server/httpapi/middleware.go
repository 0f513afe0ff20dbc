package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/server/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// authMiddleware verifies the bearer session token and stores its claims in
// the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, common.ErrorUnauthorized)
			return
		}

		claims, err := auth.ParseToken(token, []byte(s.cfg.SecretKey))
		if err != nil {
			s.writeError(w, common.ErrorUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// session returns the caller's claims and a remote client bound to their
// host token.
func (s *Server) session(r *http.Request) (*auth.Claims, Remote) {
	claims := claimsFrom(r)
	return claims, s.remote(claims.HostToken)
}

// resourcesSession is session against the resources repository.
func (s *Server) resourcesSession(r *http.Request) (*auth.Claims, Remote) {
	claims := claimsFrom(r)
	return claims, s.resources(claims.HostToken)
}
