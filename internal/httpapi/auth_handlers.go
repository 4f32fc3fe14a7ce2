package httpapi

import (
	"net/http"
	"strings"
	"time"

	"coopra.org/internal/audit"
	"coopra.org/internal/auth"
	"coopra.org/internal/coop"
	"coopra.org/internal/rbac"
)

type tokenRequest struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	CooperativeID string `json:"cooperative_id"`
	MemberRole    string `json:"member_role"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

const tokenTTL = 15 * time.Minute

func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}
	role := rbac.ParseRole(req.Role)
	if !a.table.KnownRole(role) {
		writeError(w, r, http.StatusBadRequest, "unknown role")
		return
	}

	id := auth.Identity{
		UserID:        req.UserID,
		Name:          strings.TrimSpace(req.Name),
		Role:          string(role),
		CooperativeID: strings.TrimSpace(req.CooperativeID),
		MemberRole:    strings.TrimSpace(req.MemberRole),
	}
	token, err := auth.GenerateToken(id, tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	expiresAt := time.Now().UTC().Add(tokenTTL)
	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]string{
		"user_id":    req.UserID,
		"role":       string(role),
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

type profileResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Role          rbac.Role         `json:"role"`
	RoleLabel     string            `json:"role_label"`
	CooperativeID string            `json:"cooperative_id,omitempty"`
	MemberRole    rbac.MemberRole   `json:"member_role,omitempty"`
	Capabilities  []rbac.Capability `json:"capabilities"`
	Navigation    []rbac.NavEntry   `json:"navigation"`
	Gate          *coop.GateView    `json:"gate,omitempty"`
}

// handleMe returns the actor profile with its capability set, navigation
// sections, and the status gate of its cooperative if it has one.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	actor, ok := a.actorFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	resp := profileResponse{
		ID:            actor.ID,
		Name:          actor.Name,
		Role:          actor.Role,
		RoleLabel:     rbac.DescribeRole(actor.Role),
		CooperativeID: actor.CooperativeID,
		MemberRole:    actor.MemberRole,
		Capabilities:  a.table.Capabilities(actor.Role),
		Navigation:    a.table.Navigation(&actor),
	}
	if actor.CooperativeID != "" {
		if c, err := a.coops.Get(r.Context(), actor.CooperativeID); err == nil {
			gate := coop.Gate(c.Status)
			resp.Gate = &gate
		}
	}

	writeData(w, http.StatusOK, "profile", resp)
}
