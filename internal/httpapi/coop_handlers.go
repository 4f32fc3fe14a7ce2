package httpapi

import (
	"net/http"
	"strings"

	"coopra.org/internal/audit"
	"coopra.org/internal/coop"
	"coopra.org/internal/member"
	"coopra.org/internal/obs"
	"coopra.org/internal/product"
	"coopra.org/internal/rbac"
	"coopra.org/internal/stream"
)

type registerCooperativeRequest struct {
	Name           string `json:"name"`
	RegistrationNo string `json:"registration_no"`
	Region         string `json:"region"`
}

type rejectCooperativeRequest struct {
	Reason string `json:"reason"`
}

func (a *API) handleCooperativesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listCooperatives(w, r)
	case http.MethodPost:
		a.registerCooperative(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listCooperatives(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.actorFrom(r); !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	status := coop.Status(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	coops, err := a.coops.List(r.Context(), status)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if coops == nil {
		coops = []coop.Cooperative{}
	}
	writeData(w, http.StatusOK, "cooperatives", coops)
}

func (a *API) registerCooperative(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actorFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	var req registerCooperativeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := a.coops.Register(r.Context(), coop.RegisterParams{
		Name:           req.Name,
		RegistrationNo: req.RegistrationNo,
		Region:         req.Region,
		AdminID:        actor.ID,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "cooperative.registered", map[string]string{
		"cooperative_id": c.ID,
		"name":           c.Name,
	})
	w.Header().Set("Location", "/v1/cooperatives/"+c.ID)
	writeData(w, http.StatusCreated, "cooperative registered", c)
}

func (a *API) handleCooperativeResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/cooperatives/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id := parts[0]

	switch len(parts) {
	case 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.getCooperative(w, r, id)
	case 2:
		switch parts[1] {
		case "approve":
			a.transitionCooperative(w, r, id, coop.StatusApproved)
		case "reject":
			a.transitionCooperative(w, r, id, coop.StatusRejected)
		case "suspend":
			a.transitionCooperative(w, r, id, coop.StatusSuspended)
		case "members":
			a.handleCooperativeMembers(w, r, id)
		case "products":
			a.handleCooperativeProducts(w, r, id)
		default:
			writeError(w, r, http.StatusNotFound, "resource not found")
		}
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) getCooperative(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.actorFrom(r); !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	c, err := a.coops.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "cooperative", c)
}

// transitionCooperative handles approve, reject, and suspend. All three are
// platform-level lifecycle actions behind the registration approval
// capability.
func (a *API) transitionCooperative(w http.ResponseWriter, r *http.Request, id string, to coop.Status) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, ok := a.ensureCapability(w, r, rbac.CapApproveRegistrations); !ok {
		return
	}

	var (
		c   coop.Cooperative
		err error
	)
	switch to {
	case coop.StatusApproved:
		c, err = a.coops.Approve(r.Context(), id)
	case coop.StatusRejected:
		var req rejectCooperativeRequest
		if decErr := decodeJSON(w, r, &req); decErr != nil {
			writeError(w, r, http.StatusBadRequest, decErr.Error())
			return
		}
		c, err = a.coops.Reject(r.Context(), id, req.Reason)
	case coop.StatusSuspended:
		c, err = a.coops.Suspend(r.Context(), id)
	}
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	obs.ObserveCooperativeTransition(string(to))
	_ = audit.LogEvent(r.Context(), "cooperative."+strings.ToLower(string(to)), map[string]string{
		"cooperative_id": c.ID,
		"status":         string(c.Status),
		"reason":         c.StatusReason,
	})
	if a.events != nil {
		a.events.Publish(stream.Event{
			Type:          eventTypeForStatus(to),
			CooperativeID: c.ID,
			Detail:        map[string]string{"status": string(c.Status)},
		})
	}
	writeData(w, http.StatusOK, "cooperative "+strings.ToLower(string(to)), c)
}

func eventTypeForStatus(to coop.Status) stream.EventType {
	switch to {
	case coop.StatusRejected:
		return stream.EventCooperativeRejected
	case coop.StatusSuspended:
		return stream.EventCooperativeSuspended
	default:
		return stream.EventCooperativeApproved
	}
}

type addMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (a *API) handleCooperativeMembers(w http.ResponseWriter, r *http.Request, coopID string) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.ensureCapability(w, r, rbac.CapManageMembers); !ok {
			return
		}
		members, err := a.members.List(r.Context(), coopID)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		if members == nil {
			members = []member.Member{}
		}
		writeData(w, http.StatusOK, "members", members)
	case http.MethodPost:
		if _, ok := a.ensureCapability(w, r, rbac.CapManageMembers); !ok {
			return
		}
		var req addMemberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		m, err := a.members.Add(r.Context(), member.AddParams{
			CooperativeID: coopID,
			Name:          req.Name,
			Email:         req.Email,
			Role:          rbac.ParseMemberRole(req.Role),
		})
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "member.added", map[string]string{
			"cooperative_id": coopID,
			"member_id":      m.ID,
		})
		writeData(w, http.StatusCreated, "member added", m)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

type createProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
}

func (a *API) handleCooperativeProducts(w http.ResponseWriter, r *http.Request, coopID string) {
	switch r.Method {
	case http.MethodGet:
		// listings are readable by any authenticated actor, buyers included
		if _, ok := a.actorFrom(r); !ok {
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		products, err := a.products.List(r.Context(), coopID)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		if products == nil {
			products = []product.Product{}
		}
		writeData(w, http.StatusOK, "products", products)
	case http.MethodPost:
		if _, ok := a.ensureCapability(w, r, rbac.CapManageProducts); !ok {
			return
		}
		var req createProductRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		p, err := a.products.Create(r.Context(), product.CreateParams{
			CooperativeID: coopID,
			Name:          req.Name,
			Description:   req.Description,
			Price:         req.Price,
			Stock:         req.Stock,
		})
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "product.created", map[string]string{
			"cooperative_id": coopID,
			"product_id":     p.ID,
		})
		writeData(w, http.StatusCreated, "product created", p)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}
