package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"coopra.org/internal/approval"
	"coopra.org/internal/coop"
	"coopra.org/internal/member"
	"coopra.org/internal/obs"
	"coopra.org/internal/product"
	"coopra.org/internal/rbac"
	"coopra.org/internal/stream"
)

// ReadyProbe checks downstream readiness (for example a DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	table      *rbac.Table
	coops      *coop.Service
	approvals  *approval.Service
	members    *member.Service
	products   *product.Service
	events     *stream.Hub
	readyProbe ReadyProbe
	version    string
	log        zerolog.Logger
	rlBurst    int
	rlPerSec   int
}

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Table      *rbac.Table
	Coops      *coop.Service
	Approvals  *approval.Service
	Members    *member.Service
	Products   *product.Service
	Events     *stream.Hub
	ReadyProbe ReadyProbe
	Version    string
	Log        zerolog.Logger

	// RateLimitBurst and RateLimitPerSecond default to 50/25 when zero.
	RateLimitBurst     int
	RateLimitPerSecond int
}

func New(d Deps) *API {
	a := &API{
		mux:        http.NewServeMux(),
		table:      d.Table,
		coops:      d.Coops,
		approvals:  d.Approvals,
		members:    d.Members,
		products:   d.Products,
		events:     d.Events,
		readyProbe: d.ReadyProbe,
		version:    d.Version,
		log:        d.Log,
		rlBurst:    d.RateLimitBurst,
		rlPerSec:   d.RateLimitPerSecond,
	}
	if a.rlBurst <= 0 {
		a.rlBurst = 50
	}
	if a.rlPerSec <= 0 {
		a.rlPerSec = 25
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth + profile
	a.mux.HandleFunc("/v1/auth/token", a.handleAuthToken)
	a.mux.HandleFunc("/v1/me", a.handleMe)

	// cooperatives, nested members/products, lifecycle actions
	a.mux.HandleFunc("/v1/cooperatives", a.handleCooperativesCollection)
	a.mux.HandleFunc("/v1/cooperatives/", a.handleCooperativeResource)

	// approval workflow
	a.mux.HandleFunc("/v1/approvals", a.handleApprovalsCollection)
	a.mux.HandleFunc("/v1/approvals/", a.handleApprovalResource)

	// marketplace listings addressed directly
	a.mux.HandleFunc("/v1/products/", a.handleProductResource)

	// SSE event stream
	a.mux.HandleFunc("/v1/events", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler wires the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rlBurst, a.rlPerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = a.Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "coopra-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "coopra-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
