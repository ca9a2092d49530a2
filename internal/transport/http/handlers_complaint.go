package httptransport

import (
	"net/http"

	"shifttrust/internal/domain"
)

type complaintRequest struct {
	WorkerUUID string `json:"worker_uuid"`
	ReportedBy string `json:"reported_by"`
}

// handleComplaint records a complaint against a worker. Complaints feed the
// risk scorer on the worker's next shift start; they never affect a shift
// already in progress.
func (h *Handler) handleComplaint(w http.ResponseWriter, r *http.Request) {
	var req complaintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	workerID, err := domain.ParseID(req.WorkerUUID)
	if err != nil {
		writeError(w, err)
		return
	}
	reporterID, err := domain.ParseID(req.ReportedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.identities.RequireRole(r.Context(), workerID, domain.RoleWorker); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.identities.Get(r.Context(), reporterID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.complaints.Report(r.Context(), workerID, reporterID); err != nil {
		writeError(w, err)
		return
	}
	count, err := h.complaints.CountByWorker(r.Context(), workerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"worker_uuid":     workerID.String(),
		"complaint_count": count,
	})
}
