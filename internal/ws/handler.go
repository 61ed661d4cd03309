// File: internal/ws/handler.go
package ws

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/appleaww/messenger/internal/services"
)

// Handler owns the handshake endpoint: authenticate, upgrade, register,
// pump. A rejected handshake never reaches the hub or the presence tracker.
type Handler struct {
	upgrader      websocket.Upgrader
	authenticator *Authenticator
	hub           *Hub
	dispatcher    *SessionEventDispatcher
	relay         RelayService
	logger        services.Logger
}

func NewHandler(authenticator *Authenticator, hub *Hub, dispatcher *SessionEventDispatcher, relay RelayService, logger services.Logger) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Origin policy is enforced by the fronting proxy.
			},
		},
		authenticator: authenticator,
		hub:           hub,
		dispatcher:    dispatcher,
		relay:         relay,
		logger:        logger,
	}
}

// ServeWS handles GET /ws.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	principal, err := h.authenticator.Authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		var status int
		switch {
		case errors.Is(err, ErrMissingCredential):
			status = http.StatusBadRequest
		case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrUnknownUser):
			status = http.StatusUnauthorized
		default:
			status = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade writes its own error response.
		h.logger.Warn("websocket upgrade failed", "user_id", principal.UserID, "error", err)
		return
	}

	client := newClient(uuid.NewString(), conn, principal, h.relay, h.logger)
	h.hub.Register(client)
	h.dispatcher.SessionConnected(context.Background(), principal)

	go client.writePump()
	go client.readPump(func() {
		h.hub.Unregister(client)
		h.dispatcher.SessionDisconnected(context.Background(), principal)
	})
}
