// File: internal/services/chat/errors.go
package chat

import "errors"

var (
	ErrChatNotFound  = errors.New("chat not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrSelfChat      = errors.New("cannot create chat with yourself")
	ErrChatExists    = errors.New("chat already exists")
	ErrNotAuthorized = errors.New("user is not a participant of the chat")
)
