package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shifttrust/internal/domain"
)

type bindRequest struct {
	WorkerUUID   string `json:"worker_uuid"`
	Workplace    string `json:"workplace"`
	Location     string `json:"location"`
	SupervisorID string `json:"supervisor_id"`
}

func (h *Handler) handleBind(w http.ResponseWriter, r *http.Request) {
	var req bindRequest
	if !decodeBody(w, r, &req) {
		return
	}
	workerID, err := domain.ParseID(req.WorkerUUID)
	if err != nil {
		writeError(w, err)
		return
	}
	supervisorID, err := domain.ParseID(req.SupervisorID)
	if err != nil {
		writeError(w, err)
		return
	}
	bnd, err := h.bindings.Bind(r.Context(), workerID, req.Workplace, req.Location, supervisorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bnd)
}

func (h *Handler) handleBindingsBySupervisor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supervisorID, err := domain.ParseID(chi.URLParam(r, "supervisorID"))
	if err != nil {
		writeError(w, err)
		return
	}
	supervisor, err := h.identities.Get(ctx, supervisorID)
	if err != nil {
		writeError(w, err)
		return
	}
	bindings, err := h.bindings.BindingsFor(ctx, supervisorID)
	if err != nil {
		writeError(w, err)
		return
	}
	enriched := make([]map[string]any, 0, len(bindings))
	for _, bnd := range bindings {
		workerName := "Unknown"
		if worker, err := h.identities.Get(ctx, bnd.WorkerID); err == nil {
			workerName = worker.Name
		}
		enriched = append(enriched, map[string]any{
			"worker_uuid":   bnd.WorkerID.String(),
			"worker_name":   workerName,
			"workplace":     bnd.Workplace,
			"location":      bnd.Location,
			"supervisor_id": bnd.SupervisorID.String(),
			"active":        bnd.Active,
			"created_at":    bnd.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"supervisor_id":   supervisorID.String(),
		"supervisor_name": supervisor.Name,
		"bindings":        enriched,
		"count":           len(enriched),
	})
}

func (h *Handler) handleBindingByWorker(w http.ResponseWriter, r *http.Request) {
	workerID, err := domain.ParseID(chi.URLParam(r, "workerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	bnd, bound, err := h.bindings.ActiveBindingFor(r.Context(), workerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !bound {
		writeJSON(w, http.StatusOK, map[string]any{"bound": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bound":   true,
		"binding": bnd,
	})
}
