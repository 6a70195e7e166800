package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-onboarding-api/internal/application/otp"
)

// OTPHandler handles the one-time-code login flow. When exposeCodes is set
// (development only) the issued code is echoed in the response so the flow
// can be exercised without SMS or SMTP infrastructure.
type OTPHandler struct {
	svc         otp.Service
	exposeCodes bool
}

func NewOTPHandler(svc otp.Service, exposeCodes bool) *OTPHandler {
	return &OTPHandler{svc: svc, exposeCodes: exposeCodes}
}

func (h *OTPHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var body struct {
			Identifier string `json:"identifier"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Identifier == "" {
			writeError(w, http.StatusBadRequest, "identifier is required")
			return
		}
		code, err := h.svc.RequestCode(r.Context(), body.Identifier)
		if err != nil {
			httpError(w, err)
			return
		}
		resp := map[string]string{"message": "code sent"}
		if h.exposeCodes {
			resp["code"] = code
		}
		writeJSON(w, http.StatusOK, resp)
	case "validate":
		var body struct {
			Identifier string `json:"identifier"`
			Code       string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Identifier == "" || body.Code == "" {
			writeError(w, http.StatusBadRequest, "identifier and code are required")
			return
		}
		result, err := h.svc.ValidateCode(r.Context(), body.Identifier, body.Code)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: result.Bearer, User: result.User})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
