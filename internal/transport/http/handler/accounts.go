package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-auth-api/internal/application/account"
	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/validate"
	"github.com/go-auth-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// AccountHandler handles registration and account endpoints.
type AccountHandler struct {
	svc     account.Service
	authSvc auth.Service
}

func NewAccountHandler(svc account.Service, authSvc auth.Service) *AccountHandler {
	return &AccountHandler{svc: svc, authSvc: authSvc}
}

// Register creates a local account and kicks off email verification.
// Registration succeeds even when the verification mail cannot be issued;
// the user can request a new one after logging in is rejected.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	if err := h.authSvc.RequestEmailVerification(r.Context(), a.AccountID); err != nil {
		slog.Warn("could not issue verification email after registration", "account_id", a.AccountID, "err", err)
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "registered, check your email for activation"})
}

// Me returns the authenticated account.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.GetByEmail(r.Context(), subject)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Update modifies profile fields; only the account owner may update.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	me, err := h.svc.GetByEmail(r.Context(), subject)
	if err != nil {
		httpError(w, err)
		return
	}
	if me.AccountID != chi.URLParam(r, "id") {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	var req domain.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a, err := h.svc.Update(r.Context(), me.AccountID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Exists reports whether a login identifier is registered.
func (h *AccountHandler) Exists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.svc.ExistsByEmail(r.Context(), chi.URLParam(r, "login"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exists)
}
