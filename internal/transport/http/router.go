// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services and encode; business rules stay out of this package.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shifttrust/internal/binding"
	"shifttrust/internal/identity"
	"shifttrust/internal/platform/metrics"
	"shifttrust/internal/platform/middleware"
	"shifttrust/internal/risk"
	"shifttrust/internal/shift"
	"shifttrust/internal/verify"
)

type Handler struct {
	log        *slog.Logger
	identities *identity.Service
	bindings   *binding.Service
	shifts     *shift.Service
	verifier   *verify.Service
	complaints risk.ComplaintStore
	metrics    *metrics.Metrics
}

func NewHandler(
	identities *identity.Service,
	bindings *binding.Service,
	shifts *shift.Service,
	verifier *verify.Service,
	complaints risk.ComplaintStore,
	m *metrics.Metrics,
	log *slog.Logger,
) *Handler {
	return &Handler{
		log:        log,
		identities: identities,
		bindings:   bindings,
		shifts:     shifts,
		verifier:   verifier,
		complaints: complaints,
		metrics:    m,
	}
}

// NewRouter wires all public endpoints behind the standard middleware chain.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(h.log))
	r.Use(middleware.Latency(h.metrics))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/register", h.handleRegister)
	r.Get("/register/check/{phone}", h.handleCheckPhone)
	r.Get("/profile/{id}", h.handleProfile)
	r.Post("/profile/{id}/platform-link", h.handleAddPlatformLink)
	r.Get("/profile/{id}/shifts", h.handleShiftHistory)

	r.Post("/workplace/bind", h.handleBind)
	r.Get("/workplace/bindings/{supervisorID}", h.handleBindingsBySupervisor)
	r.Get("/workplace/binding/{workerID}", h.handleBindingByWorker)

	r.Post("/shift/start", h.handleShiftStart)
	r.Post("/shift/end", h.handleShiftEnd)
	r.Get("/shift/status/{workerID}", h.handleShiftStatus)

	r.Post("/verify/worker", h.handleVerifyWorker)
	r.Get("/verify/history/{customerID}", h.handleVerifyHistory)
	r.Get("/verify/stats/{workerID}", h.handleVerifyStats)

	r.Post("/police/scan", h.handlePoliceScan)
	r.Get("/police/events", h.handlePoliceEvents)
	r.Get("/police/active-workers", h.handleActiveWorkers)

	r.Post("/complaints", h.handleComplaint)

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
