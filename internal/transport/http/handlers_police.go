package httptransport

import (
	"net/http"

	"shifttrust/internal/domain"
	"shifttrust/internal/verify"
)

type policeScanRequest struct {
	Token       string `json:"stt"`
	OfficerUUID string `json:"officer_uuid"`
	Location    string `json:"location,omitempty"`
}

type policeScanResponse struct {
	Verified       bool           `json:"verified"`
	Identity       map[string]any `json:"identity,omitempty"`
	Workplace      map[string]any `json:"workplace,omitempty"`
	ShiftStatus    map[string]any `json:"shift_status,omitempty"`
	RiskState      string         `json:"risk_state,omitempty"`
	SupervisorName string         `json:"supervisor_name,omitempty"`
	Message        string         `json:"message"`
}

func (h *Handler) handlePoliceScan(w http.ResponseWriter, r *http.Request) {
	var req policeScanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	officerID, err := domain.ParseID(req.OfficerUUID)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.verifier.Verify(r.Context(), req.Token, officerID, domain.RolePolice, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, policeView(result))
}

// policeView exposes the extended projection: full identity, workplace
// binding details, shift timing and the supervisor of record.
func policeView(result verify.Result) policeScanResponse {
	switch result.Outcome {
	case verify.OutcomeMalformed:
		return policeScanResponse{Message: "Invalid QR code"}
	case verify.OutcomeUnknown:
		return policeScanResponse{Message: "QR code not found or invalid"}
	case verify.OutcomeEnded:
		return policeScanResponse{Message: "Worker's shift has ended"}
	}

	identity := map[string]any{
		"uuid":           result.Worker.ID.String(),
		"name":           result.Worker.Name,
		"phone":          result.Worker.Phone,
		"role":           result.Worker.Role,
		"registered_at":  result.Worker.CreatedAt,
		"platform_links": result.Worker.PlatformLinks,
	}
	workplace := map[string]any{
		"name":           result.Shift.Workplace,
		"binding_active": result.BindingActive,
	}
	if result.BindingActive {
		workplace["location"] = result.Binding.Location
		workplace["bound_at"] = result.Binding.CreatedAt
	}
	shiftStatus := map[string]any{
		"active":     true,
		"shift_id":   result.Shift.ID.String(),
		"start_time": result.Shift.Start,
	}

	supervisorName := "Unknown"
	if result.HasSupervisor {
		supervisorName = result.Supervisor.Name
	}
	return policeScanResponse{
		Verified:       true,
		Identity:       identity,
		Workplace:      workplace,
		ShiftStatus:    shiftStatus,
		RiskState:      string(result.Shift.RiskBucket),
		SupervisorName: supervisorName,
		Message:        "Worker verified - All details validated",
	}
}

func (h *Handler) handlePoliceEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50)
	events, err := h.verifier.RecentEvents(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": historyPayload(events),
		"count":  len(events),
	})
}

func (h *Handler) handleActiveWorkers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shifts, err := h.shifts.ActiveShifts(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	workers := make([]map[string]any, 0, len(shifts))
	for _, sh := range shifts {
		entry := map[string]any{
			"worker_uuid": sh.WorkerID.String(),
			"workplace":   sh.Workplace,
			"shift_start": sh.Start,
			"risk_state":  sh.RiskBucket,
		}
		if worker, err := h.identities.Get(ctx, sh.WorkerID); err == nil {
			entry["worker_name"] = worker.Name
			entry["worker_phone"] = worker.Phone
		}
		workers = append(workers, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active_workers": workers,
		"count":          len(workers),
	})
}
