// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/appleaww/messenger/internal/dtos"
	"github.com/appleaww/messenger/internal/middleware"
	"github.com/appleaww/messenger/internal/services/chat"
)

type ChatHandler struct {
	ChatService *chat.Service
}

func NewChatHandler(cs *chat.Service) *ChatHandler {
	return &ChatHandler{ChatService: cs}
}

// CreateChat opens a new conversation with another user.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req dtos.ChatCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CompanionUsername == "" {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.ChatService.Create(r.Context(), userID, req.CompanionUsername)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrUserNotFound):
			writeError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, chat.ErrSelfChat):
			writeError(w, "Cannot create a chat with yourself", http.StatusBadRequest)
		case errors.Is(err, chat.ErrChatExists):
			writeError(w, "Chat already exists", http.StatusConflict)
		default:
			writeError(w, "Could not create chat", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListChats retrieves all conversations for the authenticated user.
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.ChatService.List(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// OpenChat retrieves a single conversation and marks its unread messages as read.
func (h *ChatHandler) OpenChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := chatIDFromPath(r)
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	detail, err := h.ChatService.Open(r.Context(), chatID, userID)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CloseChat seals the conversation summary when the user navigates away.
func (h *ChatHandler) CloseChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := chatIDFromPath(r)
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.Close(r.Context(), chatID, userID); err != nil {
		writeChatError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteChat removes a conversation and all of its messages.
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := chatIDFromPath(r)
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.Delete(r.Context(), chatID, userID); err != nil {
		writeChatError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func chatIDFromPath(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}

func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrChatNotFound):
		writeError(w, "Chat not found", http.StatusNotFound)
	case errors.Is(err, chat.ErrNotAuthorized):
		writeError(w, "Forbidden", http.StatusForbidden)
	default:
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
