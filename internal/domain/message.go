// File: internal/domain/message.go
package domain

import "time"

// Message is a single message inside a chat. Content is immutable after
// creation; only the read flag may transition, and only from false to true.
type Message struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	ChatID      uint      `json:"chat_id" gorm:"not null;index"`
	SenderID    uint      `json:"sender_id" gorm:"not null"`
	Content     string    `json:"content" gorm:"type:text"`
	SendingTime time.Time `json:"sending_time" gorm:"not null;index"`
	IsRead      bool      `json:"is_read" gorm:"not null;default:false"`
}
