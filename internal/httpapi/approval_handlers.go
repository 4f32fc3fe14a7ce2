package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"coopra.org/internal/approval"
	"coopra.org/internal/audit"
	"coopra.org/internal/obs"
	"coopra.org/internal/rbac"
	"coopra.org/internal/stream"
)

type createApprovalRequest struct {
	CooperativeID     string `json:"cooperative_id"`
	Type              string `json:"type"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Amount            int64  `json:"amount"`
	RequiredApprovals int    `json:"required_approvals"`
}

type decisionRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes"`
}

func (a *API) handleApprovalsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listApprovals(w, r)
	case http.MethodPost:
		a.createApproval(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listApprovals(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.actorFrom(r); !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	filter := approval.Filter{
		CooperativeID: strings.TrimSpace(r.URL.Query().Get("cooperative_id")),
		Status:        approval.Status(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))),
	}
	reqs, err := a.approvals.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if reqs == nil {
		reqs = []approval.Request{}
	}
	writeData(w, http.StatusOK, "approval requests", reqs)
}

func (a *API) createApproval(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actorFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	var req createApprovalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	created, err := a.approvals.Create(r.Context(), approval.CreateParams{
		CooperativeID:     req.CooperativeID,
		Type:              approval.Type(req.Type),
		Title:             req.Title,
		Description:       req.Description,
		Amount:            req.Amount,
		InitiatorID:       actor.ID,
		InitiatorName:     actor.Name,
		RequiredApprovals: req.RequiredApprovals,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "approval.created", map[string]string{
		"request_id":     created.ID,
		"cooperative_id": created.CooperativeID,
		"type":           string(created.Type),
	})
	if a.events != nil {
		a.events.Publish(stream.Event{
			Type:          stream.EventApprovalCreated,
			CooperativeID: created.CooperativeID,
			RequestID:     created.ID,
		})
	}
	w.Header().Set("Location", "/v1/approvals/"+created.ID)
	writeData(w, http.StatusCreated, "approval request created", created)
}

func (a *API) handleApprovalResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/approvals/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id := parts[0]

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.getApproval(w, r, id)
	case len(parts) == 2 && parts[1] == "decisions":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.decideApproval(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) getApproval(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.actorFrom(r); !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	req, err := a.approvals.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "approval request", req)
}

// decideApproval appends the reviewer's verdict. The capability gate catches
// roles without approve_requests outright; the service re-checks that the
// reviewer holds a deciding seat in the cooperative.
func (a *API) decideApproval(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := a.ensureCapability(w, r, rbac.CapApproveRequests)
	if !ok {
		return
	}
	var req decisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.approvals.Decide(r.Context(), id, actor, req.Approved, req.Notes)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	obs.ObserveDecision(req.Approved)
	_ = audit.LogEvent(r.Context(), "approval.decided", map[string]string{
		"request_id": updated.ID,
		"approved":   strconv.FormatBool(req.Approved),
		"status":     string(updated.Status),
	})
	if a.events != nil {
		a.events.Publish(stream.Event{
			Type:          stream.EventApprovalDecided,
			CooperativeID: updated.CooperativeID,
			RequestID:     updated.ID,
			Detail: map[string]string{
				"approved": strconv.FormatBool(req.Approved),
				"status":   string(updated.Status),
			},
		})
	}
	writeData(w, http.StatusOK, "decision recorded", updated)
}
