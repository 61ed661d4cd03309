// File: internal/dtos/chat.go
package dtos

import "time"

type ChatCreateRequest struct {
	CompanionUsername string `json:"companionUsername"`
}

type ChatCreateResponse struct {
	ChatID        uint   `json:"chatId"`
	CompanionID   uint   `json:"companionId"`
	CompanionName string `json:"companionName"`
	LastMessage   string `json:"lastMessage"`
}

// ChatListItem is the denormalized per-chat row of the chat list.
type ChatListItem struct {
	ChatID                 uint      `json:"chatId"`
	CompanionID            uint      `json:"companionId"`
	CompanionName          string    `json:"companionName"`
	LastMessage            string    `json:"lastMessage"`
	LastMessageSendingTime time.Time `json:"lastMessageSendingTime"`
	UnreadMessagesCount    int64     `json:"unreadMessagesCount"`
}

type MessageView struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	SendingTime time.Time `json:"sendingTime"`
	SenderID    uint      `json:"senderId"`
	IsRead      bool      `json:"isRead"`
	IsMine      bool      `json:"isMine"`
}

type ChatDetail struct {
	ChatID            uint          `json:"chatId"`
	CompanionName     string        `json:"companionName"`
	CompanionUsername string        `json:"companionUsername"`
	Messages          []MessageView `json:"messages"`
}
