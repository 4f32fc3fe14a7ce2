package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"coopra.org/internal/auth"
	"coopra.org/internal/rbac"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/v1/auth/token",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}

func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := auth.ParseAndValidate(token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				writeError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), claims.Identity())
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorFrom rebuilds the RBAC actor from the authenticated identity. The
// second return is false when the request carries no identity, which for
// guarded paths means the auth middleware was bypassed.
func (a *API) actorFrom(r *http.Request) (rbac.Actor, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return rbac.Actor{}, false
	}
	return rbac.Actor{
		ID:            id.UserID,
		Name:          id.Name,
		Role:          rbac.ParseRole(id.Role),
		CooperativeID: id.CooperativeID,
		MemberRole:    rbac.ParseMemberRole(id.MemberRole),
	}, true
}

// ensureCapability enforces a capability gate and writes the denial itself.
func (a *API) ensureCapability(w http.ResponseWriter, r *http.Request, cap rbac.Capability) (rbac.Actor, bool) {
	actor, ok := a.actorFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return rbac.Actor{}, false
	}
	if !a.table.GuardCapability(&actor, cap) {
		writeError(w, r, http.StatusForbidden, "access denied for role "+rbac.DescribeRole(actor.Role))
		return rbac.Actor{}, false
	}
	return actor, true
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
