package handler

import (
	"net/http"

	"github.com/go-auth-api/internal/application/account"
	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/transport/http/middleware"
)

// EmailVerificationHandler handles the email verification flow.
type EmailVerificationHandler struct {
	svc      auth.Service
	accounts account.Service
}

func NewEmailVerificationHandler(svc auth.Service, accounts account.Service) *EmailVerificationHandler {
	return &EmailVerificationHandler{svc: svc, accounts: accounts}
}

// Verify consumes a verification token from the query string and marks the
// owning account's email verified. The link lands here from the email.
func (h *EmailVerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}
	if err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email verified"})
}

// Request re-issues a verification token for the authenticated account,
// superseding any prior one.
func (h *EmailVerificationHandler) Request(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.accounts.GetByEmail(r.Context(), subject)
	if err != nil {
		httpError(w, err)
		return
	}
	if err := h.svc.RequestEmailVerification(r.Context(), a.AccountID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification email sent"})
}
