// File: internal/ws/dispatcher.go
package ws

import (
	"context"

	"github.com/appleaww/messenger/internal/auth"
	"github.com/appleaww/messenger/internal/services"
)

// PresenceNotifier is the part of the presence tracker the dispatcher needs.
type PresenceNotifier interface {
	Connected(ctx context.Context, userID uint) error
	Disconnected(ctx context.Context, userID uint) error
}

// SessionEventDispatcher binds transport-level connection lifecycle
// notifications to presence bookkeeping. A notification with no Principal
// means the handshake never completed; from the presence tracker's point of
// view that connection never existed, so it is ignored.
type SessionEventDispatcher struct {
	presence PresenceNotifier
	logger   services.Logger
}

func NewSessionEventDispatcher(presence PresenceNotifier, logger services.Logger) *SessionEventDispatcher {
	return &SessionEventDispatcher{presence: presence, logger: logger}
}

// SessionConnected handles a "connection established" notification.
func (d *SessionEventDispatcher) SessionConnected(ctx context.Context, principal *auth.Principal) {
	if principal == nil {
		d.logger.Debug("connect notification without principal ignored")
		return
	}
	if err := d.presence.Connected(ctx, principal.UserID); err != nil {
		d.logger.Error("presence connect failed", "user_id", principal.UserID, "error", err)
	}
}

// SessionDisconnected handles a "connection closed" notification.
func (d *SessionEventDispatcher) SessionDisconnected(ctx context.Context, principal *auth.Principal) {
	if principal == nil {
		d.logger.Debug("disconnect notification without principal ignored")
		return
	}
	if err := d.presence.Disconnected(ctx, principal.UserID); err != nil {
		d.logger.Error("presence disconnect failed", "user_id", principal.UserID, "error", err)
	}
}
