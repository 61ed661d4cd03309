// File: internal/domain/chat.go
package domain

import "time"

// DefaultLastMessage is the summary shown for a chat with no messages yet.
const DefaultLastMessage = "Send the first message!"

// Chat is a conversation between exactly two users. The participant pair is
// the authorization boundary for every relay action scoped to the chat.
type Chat struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	LastMessage  string    `json:"last_message" gorm:"type:text;not null;default:'Send the first message!'"`
	Participants []User    `json:"participants" gorm:"many2many:user_chats"`
	Messages     []Message `json:"messages,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasParticipant reports whether the user belongs to this chat.
func (c *Chat) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not the given user.
// ok is false when the chat has no second participant, which signals a
// broken two-party invariant rather than a user-facing condition.
func (c *Chat) OtherParticipant(userID uint) (*User, bool) {
	for i := range c.Participants {
		if c.Participants[i].ID != userID {
			return &c.Participants[i], true
		}
	}
	return nil, false
}

// LatestMessage returns the message with the greatest sending time.
func (c *Chat) LatestMessage() (*Message, bool) {
	if len(c.Messages) == 0 {
		return nil, false
	}
	latest := &c.Messages[0]
	for i := range c.Messages[1:] {
		if c.Messages[i+1].SendingTime.After(latest.SendingTime) {
			latest = &c.Messages[i+1]
		}
	}
	return latest, true
}
