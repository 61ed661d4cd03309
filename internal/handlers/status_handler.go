// File: internal/handlers/status_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/appleaww/messenger/internal/services/presence"
)

// StatusHandler exposes read-only presence queries over REST.
type StatusHandler struct {
	Tracker *presence.Tracker
}

func NewStatusHandler(tracker *presence.Tracker) *StatusHandler {
	return &StatusHandler{Tracker: tracker}
}

// GetUserStatus reports whether a given user is currently online.
func (h *StatusHandler) GetUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(mux.Vars(r)["userId"], 10, 32)
	if err != nil {
		writeError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	status, err := h.Tracker.Status(r.Context(), uint(userID))
	if err != nil {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// GetOnlineUsers lists the IDs of every user with at least one live session.
func (h *StatusHandler) GetOnlineUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"online": h.Tracker.Snapshot(),
	})
}
