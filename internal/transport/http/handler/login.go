package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-auth-api/internal/application/login"
	"github.com/go-auth-api/internal/pkg/validate"
)

// LoginHandler handles the login state machine endpoints.
type LoginHandler struct {
	svc login.Service
}

func NewLoginHandler(svc login.Service) *LoginHandler {
	return &LoginHandler{svc: svc}
}

// Login is the password entry point. With 2FA enabled and no code supplied
// the response is 202 Accepted and the caller must resubmit with the code.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req login.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	if result.Status == login.StatusCodeSent {
		writeJSON(w, http.StatusAccepted, AuthEnvelope{Message: "authentication code sent to email"})
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Token: result.Token, Account: result.Account})
}

// LoginWithCode resumes a code-sent login with identifier plus code.
func (h *LoginHandler) LoginWithCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login string `json:"login" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6,numeric"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.LoginWithCode(r.Context(), req.Login, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Token: result.Token, Account: result.Account})
}

// LoginWithGoogle exchanges a verified Google ID token for a session.
func (h *LoginHandler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"id_token" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Token: result.Token, Account: result.Account})
}
