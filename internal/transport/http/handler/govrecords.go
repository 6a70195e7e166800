package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-onboarding-api/internal/domain"
)

// GovernmentLookup resolves a national id to its registry record.
type GovernmentLookup interface {
	Lookup(ctx context.Context, nationalID string) (*domain.GovernmentRecord, error)
}

// GovRecordHandler exposes read-only government registry lookups.
type GovRecordHandler struct {
	registry GovernmentLookup
}

func NewGovRecordHandler(registry GovernmentLookup) *GovRecordHandler {
	return &GovRecordHandler{registry: registry}
}

func (h *GovRecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.registry.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
