package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-onboarding-api/internal/application/verification"
)

// VerificationHandler exposes the identity verification session lifecycle.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
		UserID   string `json:"user_id"`
	}
	// Body is optional; language defaults provider-side.
	_ = json.NewDecoder(r.Body).Decode(&body)

	snap, err := h.svc.Start(r.Context(), body.Language, body.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *VerificationHandler) Event(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	switch chi.URLParam(r, "action") {
	case "presentation-closed":
		if err := h.svc.PresentationClosed(sessionID); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "polling started"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

func (h *VerificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "verification session not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *VerificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Cancel(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "verification session not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification cancelled"})
}
