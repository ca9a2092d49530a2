package httptransport

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shifttrust/internal/domain"
	"shifttrust/internal/identity"
)

type registerRequest struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	FaceImage    string `json:"face_image,omitempty"`
	IDImage      string `json:"id_image,omitempty"`
	PlatformLink string `json:"platform_link,omitempty"`
}

type registerResponse struct {
	UUID               string `json:"uuid"`
	Role               string `json:"role"`
	VerificationStatus string `json:"verification_status"`
	Message            string `json:"message"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.identities.Register(r.Context(), identity.RegisterInput{
		Role:         req.Role,
		Name:         req.Name,
		Phone:        req.Phone,
		FaceImage:    req.FaceImage,
		IDImage:      req.IDImage,
		PlatformLink: req.PlatformLink,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		UUID:               id.ID.String(),
		Role:               string(id.Role),
		VerificationStatus: "pending",
		Message:            fmt.Sprintf("Registration successful as %s", id.Role),
	})
}

func (h *Handler) handleCheckPhone(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	id, found, err := h.identities.LookupPhone(r.Context(), phone)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{"registered": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"registered": true,
		"uuid":       id.ID.String(),
		"role":       id.Role,
		"name":       id.Name,
	})
}

type platformLinkRequest struct {
	PlatformLink string `json:"platform_link"`
}

func (h *Handler) handleAddPlatformLink(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req platformLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.identities.AddPlatformLink(r.Context(), id, req.PlatformLink); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.identities.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uuid":           updated.ID.String(),
		"platform_links": updated.PlatformLinks,
	})
}
