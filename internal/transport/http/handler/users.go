package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-onboarding-api/internal/application/registration"
	"github.com/go-onboarding-api/internal/domain"
	"github.com/go-onboarding-api/internal/pkg/validate"
)

// UserHandler handles user registration.
type UserHandler struct {
	svc registration.Service
}

func NewUserHandler(svc registration.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": u.UserID})
}
