// File: internal/dtos/message.go
package dtos

import "time"

// Inbound relay action payloads.

type MessageSend struct {
	ChatID  uint   `json:"chatId"`
	Content string `json:"content"`
}

type ReadReceipt struct {
	ChatID     uint   `json:"chatId"`
	MessageIDs []uint `json:"messageIds"`
}

type Typing struct {
	ChatID   uint `json:"chatId"`
	IsTyping bool `json:"isTyping"`
}

// Outbound delivery payloads.

type MessageCreated struct {
	MessageID   uint      `json:"messageId"`
	ChatID      uint      `json:"chatId"`
	SenderID    uint      `json:"senderId"`
	RecipientID uint      `json:"recipientId"`
	Content     string    `json:"content"`
	SendingTime time.Time `json:"sendingTime"`
	IsRead      bool      `json:"isRead"`
}

type ReadReceiptApplied struct {
	ChatID      uint   `json:"chatId"`
	MessageIDs  []uint `json:"messageIds"`
	ReaderID    uint   `json:"readerId"`
	RecipientID uint   `json:"recipientId"`
}

type TypingState struct {
	ChatID      uint   `json:"chatId"`
	UserID      uint   `json:"userId"`
	Username    string `json:"username"`
	RecipientID uint   `json:"recipientId"`
	IsTyping    bool   `json:"isTyping"`
}
