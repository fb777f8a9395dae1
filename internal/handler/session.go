package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/service"
)

// SessionHandler handles game session lease endpoints.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type validateRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	SessionID uuid.UUID `json:"session_id"`
	ServerID  uuid.UUID `json:"server_id"`
}

// Validate handles POST /sessions/validate — consume a ticket and install the
// lease for the calling node.
func (h *SessionHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.AccountID == uuid.Nil || req.SessionID == uuid.Nil || req.ServerID == uuid.Nil {
		RespondError(w, domain.ErrValidation("account_id, session_id, and server_id are required"))
		return
	}

	result, err := h.sessions.Validate(r.Context(), req.AccountID, req.SessionID, req.ServerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

type renewRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	SessionID uuid.UUID `json:"session_id"`
}

// Renew handles POST /sessions/renew — extend a live lease.
func (h *SessionHandler) Renew(w http.ResponseWriter, r *http.Request) {
	var req renewRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.AccountID == uuid.Nil || req.SessionID == uuid.Nil {
		RespondError(w, domain.ErrValidation("account_id and session_id are required"))
		return
	}

	result, err := h.sessions.Renew(r.Context(), req.AccountID, req.SessionID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// Release handles POST /sessions/release — clear the lease. Idempotent.
func (h *SessionHandler) Release(w http.ResponseWriter, r *http.Request) {
	var req renewRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.AccountID == uuid.Nil || req.SessionID == uuid.Nil {
		RespondError(w, domain.ErrValidation("account_id and session_id are required"))
		return
	}

	if err := h.sessions.Release(r.Context(), req.AccountID, req.SessionID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "released"})
}
