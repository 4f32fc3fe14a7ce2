package httpapi

import (
	"net/http"
	"strings"

	"coopra.org/internal/audit"
	"coopra.org/internal/product"
	"coopra.org/internal/rbac"
)

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Stock       *int    `json:"stock"`
}

func (a *API) handleProductResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/products/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if _, ok := a.actorFrom(r); !ok {
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		p, err := a.products.Get(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "product", p)
	case http.MethodPut:
		if _, ok := a.ensureCapability(w, r, rbac.CapManageProducts); !ok {
			return
		}
		var req updateProductRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		p, err := a.products.Update(r.Context(), id, product.UpdateParams{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
		})
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "product.updated", map[string]string{
			"product_id": p.ID,
		})
		writeData(w, http.StatusOK, "product updated", p)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}
