// File: internal/services/relay/errors.go
package relay

import "errors"

var (
	// ErrChatNotFound means the referenced chat does not exist.
	ErrChatNotFound = errors.New("chat not found")

	// ErrNotParticipant means the acting user is not a member of the chat.
	ErrNotParticipant = errors.New("user is not a participant of the chat")

	// ErrRecipientNotFound means the chat has no second participant. That is
	// a broken two-party invariant in the stored data, not a user mistake.
	ErrRecipientNotFound = errors.New("recipient not found")
)
