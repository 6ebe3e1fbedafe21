package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/draftroom/go/internal/apiutil"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests from admin consoles
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleDraftConnection upgrades the request and streams draft events to it.
func (h *WebSocketHandler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	// Upgrade writes its own HTTP error response on failure
	if err := h.connectionManager.UpgradeConnection(w, r); err != nil {
		log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	apiutil.WriteJSON(w, http.StatusOK, h.connectionManager.Stats())
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/draft", h.HandleDraftConnection)
	r.Get("/ws/stats", h.HandleConnectionStats)
}
