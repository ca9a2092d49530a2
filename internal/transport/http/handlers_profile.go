package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shifttrust/internal/domain"
)

// handleProfile composes the role-scoped profile view: the base identity plus
// whatever the role's dashboard needs. Workers get their binding, current
// shift and scan count; customers get their scan history; supervisors get
// workforce counts.
func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	ident, err := h.identities.Get(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	profile := map[string]any{
		"uuid":           ident.ID.String(),
		"role":           ident.Role,
		"name":           ident.Name,
		"phone":          ident.Phone,
		"platform_links": ident.PlatformLinks,
		"created_at":     ident.CreatedAt,
	}

	switch ident.Role {
	case domain.RoleWorker:
		worker := map[string]any{}
		if bnd, bound, err := h.bindings.ActiveBindingFor(ctx, id); err == nil && bound {
			worker["workplace_binding"] = bnd
		}
		status, err := h.shifts.Status(ctx, id)
		if err == nil && status.Active {
			worker["current_shift"] = map[string]any{
				"shift_id":   status.ShiftID.String(),
				"start_time": status.StartTime,
				"workplace":  status.Workplace,
				"risk_state": status.RiskBucket,
			}
		}
		if history, err := h.shifts.HistoryFor(ctx, id, 10); err == nil {
			worker["shift_history"] = shiftHistoryPayload(history)
			worker["total_shifts"] = len(history)
		}
		if stats, err := h.verifier.StatsByWorker(ctx, id); err == nil {
			worker["verification_count"] = stats.Total
		}
		profile["worker_data"] = worker
	case domain.RoleCustomer:
		history, err := h.verifier.HistoryByScanner(ctx, id, 20)
		if err != nil {
			writeError(w, err)
			return
		}
		profile["customer_data"] = map[string]any{
			"verification_history": historyPayload(history),
			"total_verifications":  len(history),
		}
	case domain.RoleSupervisor:
		bindings, err := h.bindings.BindingsFor(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		active := 0
		for _, b := range bindings {
			if b.Active {
				active++
			}
		}
		profile["supervisor_data"] = map[string]any{
			"managed_workers_count": active,
		}
	case domain.RolePolice:
		profile["police_data"] = map[string]any{"access_level": "standard"}
	}

	writeJSON(w, http.StatusOK, profile)
}

// handleShiftHistory serves the worker dashboard's shift list, newest first.
func (h *Handler) handleShiftHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.identities.Get(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	history, err := h.shifts.HistoryFor(ctx, id, queryLimit(r, 20))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uuid":   id.String(),
		"shifts": shiftHistoryPayload(history),
		"count":  len(history),
	})
}

func shiftHistoryPayload(history []domain.Shift) []map[string]any {
	out := make([]map[string]any, 0, len(history))
	for _, sh := range history {
		entry := map[string]any{
			"shift_id":   sh.ID.String(),
			"start":      sh.Start.Format(timeLayout),
			"workplace":  sh.Workplace,
			"risk_state": sh.RiskBucket,
			"risk_score": sh.RiskScore,
			"active":     sh.IsActive(),
		}
		if sh.End != nil {
			entry["end"] = sh.End.Format(timeLayout)
		}
		out = append(out, entry)
	}
	return out
}
