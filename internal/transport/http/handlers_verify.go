package httptransport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shifttrust/internal/domain"
	"shifttrust/internal/verify"
)

type verifyWorkerRequest struct {
	Token        string `json:"stt"`
	CustomerUUID string `json:"customer_uuid"`
	Location     string `json:"location,omitempty"`
}

type verifyWorkerResponse struct {
	Verified    bool   `json:"verified"`
	WorkerName  string `json:"worker_name,omitempty"`
	WorkerPhoto string `json:"worker_photo,omitempty"`
	Employer    string `json:"employer,omitempty"`
	ShiftActive bool   `json:"shift_active"`
	RiskColor   string `json:"risk_color,omitempty"`
	Message     string `json:"message"`
}

func (h *Handler) handleVerifyWorker(w http.ResponseWriter, r *http.Request) {
	var req verifyWorkerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	customerID, err := domain.ParseID(req.CustomerUUID)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.verifier.Verify(r.Context(), req.Token, customerID, domain.RoleCustomer, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customerView(result))
}

func customerView(result verify.Result) verifyWorkerResponse {
	switch result.Outcome {
	case verify.OutcomeMalformed:
		return verifyWorkerResponse{Message: "Invalid QR code"}
	case verify.OutcomeUnknown:
		return verifyWorkerResponse{Message: "QR code not found or invalid"}
	case verify.OutcomeEnded:
		return verifyWorkerResponse{Message: "Worker's shift has ended"}
	}
	return verifyWorkerResponse{
		Verified:    true,
		WorkerName:  result.Worker.Name,
		WorkerPhoto: result.Worker.FaceHash,
		Employer:    result.Shift.Workplace,
		ShiftActive: true,
		RiskColor:   string(result.Shift.RiskBucket),
		Message:     "Worker verified successfully",
	}
}

func (h *Handler) handleVerifyHistory(w http.ResponseWriter, r *http.Request) {
	customerID, err := domain.ParseID(chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	limit := queryLimit(r, 20)
	history, err := h.verifier.HistoryByScanner(r.Context(), customerID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customer_uuid": customerID.String(),
		"verifications": historyPayload(history),
		"count":         len(history),
	})
}

func (h *Handler) handleVerifyStats(w http.ResponseWriter, r *http.Request) {
	workerID, err := domain.ParseID(chi.URLParam(r, "workerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.verifier.StatsByWorker(r.Context(), workerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"worker_uuid":          stats.WorkerID.String(),
		"worker_name":          stats.WorkerName,
		"total_verifications":  stats.Total,
		"recent_verifications": stats.Recent,
	})
}

func historyPayload(entries []verify.HistoryEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"worker_uuid":  e.Record.WorkerID.String(),
			"worker_name":  e.WorkerName,
			"scanner_uuid": e.Record.ScannerID.String(),
			"time":         e.Record.Time,
			"location":     e.Record.Location,
		})
	}
	return out
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
