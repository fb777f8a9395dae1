package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/service"
)

// NodeHandler handles the game node registry endpoints.
type NodeHandler struct {
	nodes     *service.NodeService
	sessions  *service.SessionService
	ticketTTL time.Duration
}

// NewNodeHandler creates a new NodeHandler. ticketTTL is the default ticket
// lifetime when the request does not name one.
func NewNodeHandler(nodes *service.NodeService, sessions *service.SessionService, ticketTTL time.Duration) *NodeHandler {
	return &NodeHandler{nodes: nodes, sessions: sessions, ticketTTL: ticketTTL}
}

type heartbeatRequest struct {
	ID       uuid.UUID `json:"id"`
	Index    int32     `json:"index"`
	Group    int32     `json:"group"`
	Host     string    `json:"host"`
	Port     int32     `json:"port"`
	Users    int32     `json:"users"`
	MaxUsers int32     `json:"max_users"`
	PvP      bool      `json:"pvp"`
}

// Heartbeat handles POST /nodes/heartbeat.
func (h *NodeHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req heartbeatRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	node := domain.Node{
		ID:       req.ID,
		Index:    req.Index,
		Group:    req.Group,
		Host:     req.Host,
		Port:     req.Port,
		Users:    req.Users,
		MaxUsers: req.MaxUsers,
		PvP:      req.PvP,
	}
	if err := h.nodes.Heartbeat(r.Context(), node); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List handles GET /nodes.
func (h *NodeHandler) List(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.nodes.List(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"nodes": nodes})
}

type issueTicketRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	TTL       string    `json:"ttl,omitempty"`
}

// IssueTicket handles POST /sessions/tickets — the login tier mints a
// single-use ticket after authenticating the client.
func (h *NodeHandler) IssueTicket(w http.ResponseWriter, r *http.Request) {
	var req issueTicketRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.AccountID == uuid.Nil {
		RespondError(w, domain.ErrValidation("account_id is required"))
		return
	}

	ttl := h.ticketTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	if req.TTL != "" {
		parsed, err := time.ParseDuration(req.TTL)
		if err != nil || parsed <= 0 {
			RespondError(w, domain.ErrValidation("invalid ttl"))
			return
		}
		ttl = parsed
	}

	ticket, err := h.sessions.IssueTicket(r.Context(), req.AccountID, ttl)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, ticket)
}
