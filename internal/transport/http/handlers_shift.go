package httptransport

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shifttrust/internal/domain"
)

type shiftStartRequest struct {
	WorkerUUID   string `json:"worker_uuid"`
	SupervisorID string `json:"supervisor_id"`
	Workplace    string `json:"workplace"`
}

func (h *Handler) handleShiftStart(w http.ResponseWriter, r *http.Request) {
	var req shiftStartRequest
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
	sh, err := h.shifts.Start(r.Context(), workerID, supervisorID, req.Workplace)
	if err != nil {
		writeError(w, err)
		return
	}
	worker, err := h.identities.Get(r.Context(), workerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Shift started for %s", worker.Name),
		"shift": map[string]any{
			"shift_id":      sh.ID.String(),
			"worker_uuid":   sh.WorkerID.String(),
			"worker_name":   worker.Name,
			"workplace":     sh.Workplace,
			"supervisor_id": sh.SupervisorID.String(),
			"start":         sh.Start,
			"stt":           sh.Token,
			"risk_state":    sh.RiskBucket,
			"risk_score":    sh.RiskScore,
		},
	})
}

type shiftEndRequest struct {
	ShiftID      string `json:"shift_id"`
	SupervisorID string `json:"supervisor_id"`
}

func (h *Handler) handleShiftEnd(w http.ResponseWriter, r *http.Request) {
	var req shiftEndRequest
	if !decodeBody(w, r, &req) {
		return
	}
	shiftID, err := domain.ParseID(req.ShiftID)
	if err != nil {
		writeError(w, err)
		return
	}
	supervisorID, err := domain.ParseID(req.SupervisorID)
	if err != nil {
		writeError(w, err)
		return
	}
	sh, err := h.shifts.End(r.Context(), shiftID, supervisorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Shift ended successfully",
		"shift_id": sh.ID.String(),
		"end_time": sh.End,
	})
}

type shiftStatusResponse struct {
	Active    bool              `json:"active"`
	ShiftID   string            `json:"shift_id,omitempty"`
	Token     string            `json:"stt,omitempty"`
	RiskState domain.RiskBucket `json:"risk_state,omitempty"`
	StartTime string            `json:"start_time,omitempty"`
	Workplace string            `json:"workplace,omitempty"`
}

func (h *Handler) handleShiftStatus(w http.ResponseWriter, r *http.Request) {
	workerID, err := domain.ParseID(chi.URLParam(r, "workerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	status, err := h.shifts.Status(r.Context(), workerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !status.Active {
		writeJSON(w, http.StatusOK, shiftStatusResponse{Active: false})
		return
	}
	writeJSON(w, http.StatusOK, shiftStatusResponse{
		Active:    true,
		ShiftID:   status.ShiftID.String(),
		Token:     status.Token,
		RiskState: status.RiskBucket,
		StartTime: status.StartTime.Format(timeLayout),
		Workplace: status.Workplace,
	})
}
