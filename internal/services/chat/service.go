// File: internal/services/chat/service.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/appleaww/messenger/internal/domain"
	"github.com/appleaww/messenger/internal/dtos"
	chatrepo "github.com/appleaww/messenger/internal/repository/chat"
	"github.com/appleaww/messenger/internal/repository/message"
	"github.com/appleaww/messenger/internal/repository/user"
	"github.com/appleaww/messenger/internal/services"
)

// Service owns the chat lifecycle around the relay: creating the two-party
// relationship, listing with denormalized summaries, opening (which marks
// the companion's messages read) and the close/summarize operation.
type Service struct {
	chats    chatrepo.ChatRepository
	messages message.MessageRepository
	users    user.UserRepository
	logger   services.Logger
}

func NewService(chats chatrepo.ChatRepository, messages message.MessageRepository, users user.UserRepository, logger services.Logger) *Service {
	return &Service{
		chats:    chats,
		messages: messages,
		users:    users,
		logger:   logger,
	}
}

// Create starts a chat between the initiator and the named companion.
// A user cannot chat with themselves, and any user pair has at most one chat.
func (s *Service) Create(ctx context.Context, initiatorID uint, companionUsername string) (*dtos.ChatCreateResponse, error) {
	initiator, err := s.users.FindByID(ctx, initiatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, initiatorID)
	}
	companion, err := s.users.FindByUsername(ctx, companionUsername)
	if err != nil {
		return nil, fmt.Errorf("%w: username %q", ErrUserNotFound, companionUsername)
	}
	if initiator.ID == companion.ID {
		return nil, ErrSelfChat
	}

	existing, err := s.chats.FindExistingChatBetween(ctx, initiator.ID, companion.ID)
	if err != nil && !errors.Is(err, chatrepo.ErrChatNotFound) {
		return nil, fmt.Errorf("checking for existing chat: %w", err)
	}
	if existing != nil {
		return nil, ErrChatExists
	}

	c := &domain.Chat{
		LastMessage:  domain.DefaultLastMessage,
		Participants: []domain.User{*initiator, *companion},
	}
	c, err = s.chats.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}

	s.logger.Info("chat created", "chat_id", c.ID, "initiator_id", initiator.ID, "companion_id", companion.ID)
	return &dtos.ChatCreateResponse{
		ChatID:        c.ID,
		CompanionID:   companion.ID,
		CompanionName: companion.Name,
		LastMessage:   c.LastMessage,
	}, nil
}

// List returns the user's chats with companion, latest message summary and
// unread count, sorted by latest activity.
func (s *Service) List(ctx context.Context, userID uint) ([]dtos.ChatListItem, error) {
	chats, err := s.chats.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching chats for user %d: %w", userID, err)
	}

	items := make([]dtos.ChatListItem, 0, len(chats))
	for i := range chats {
		c := &chats[i]

		companionID := uint(0)
		companionName := "Unknown"
		if companion, ok := c.OtherParticipant(userID); ok {
			companionID = companion.ID
			companionName = companion.Name
		}

		lastContent := c.LastMessage
		var lastTime time.Time
		if latest, ok := c.LatestMessage(); ok {
			lastContent = latest.Content
			lastTime = latest.SendingTime
		}

		var unread int64
		for _, m := range c.Messages {
			if m.SenderID != userID && !m.IsRead {
				unread++
			}
		}

		items = append(items, dtos.ChatListItem{
			ChatID:                 c.ID,
			CompanionID:            companionID,
			CompanionName:          companionName,
			LastMessage:            lastContent,
			LastMessageSendingTime: lastTime,
			UnreadMessagesCount:    unread,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].LastMessageSendingTime.After(items[j].LastMessageSendingTime)
	})
	return items, nil
}

// Open returns the chat detail for a participant and marks every unread
// message from the companion as read.
func (s *Service) Open(ctx context.Context, chatID, userID uint) (*dtos.ChatDetail, error) {
	c, companion, err := s.authorize(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}

	var toMark []uint
	for _, m := range c.Messages {
		if m.SenderID != userID && !m.IsRead {
			toMark = append(toMark, m.ID)
		}
	}
	if len(toMark) > 0 {
		if err := s.messages.MarkRead(ctx, toMark); err != nil {
			return nil, fmt.Errorf("marking messages read in chat %d: %w", chatID, err)
		}
	}

	views := make([]dtos.MessageView, 0, len(c.Messages))
	for _, m := range c.Messages {
		isRead := m.IsRead
		if m.SenderID != userID {
			isRead = true
		}
		views = append(views, dtos.MessageView{
			ID:          m.ID,
			Content:     m.Content,
			SendingTime: m.SendingTime,
			SenderID:    m.SenderID,
			IsRead:      isRead,
			IsMine:      m.SenderID == userID,
		})
	}

	return &dtos.ChatDetail{
		ChatID:            c.ID,
		CompanionName:     companion.Name,
		CompanionUsername: companion.Username,
		Messages:          views,
	}, nil
}

// Close recomputes the chat's denormalized summary from the newest message
// and persists it. A chat with no messages keeps the default summary.
func (s *Service) Close(ctx context.Context, chatID, userID uint) error {
	c, _, err := s.authorize(ctx, chatID, userID)
	if err != nil {
		return err
	}

	lastMessage := domain.DefaultLastMessage
	if latest, ok := c.LatestMessage(); ok {
		lastMessage = latest.Content
	}
	if err := s.chats.UpdateLastMessage(ctx, c.ID, lastMessage); err != nil {
		return fmt.Errorf("updating last message for chat %d: %w", chatID, err)
	}

	s.logger.Debug("chat summarized on close", "chat_id", c.ID, "user_id", userID)
	return nil
}

// Delete removes the chat and its messages.
func (s *Service) Delete(ctx context.Context, chatID, userID uint) error {
	c, _, err := s.authorize(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if err := s.chats.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("deleting chat %d: %w", chatID, err)
	}
	s.logger.Info("chat deleted", "chat_id", chatID, "user_id", userID)
	return nil
}

func (s *Service) authorize(ctx context.Context, chatID, userID uint) (*domain.Chat, *domain.User, error) {
	c, err := s.chats.FindWithMessages(ctx, chatID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: id %d", ErrChatNotFound, chatID)
	}
	if !c.HasParticipant(userID) {
		return nil, nil, fmt.Errorf("%w: user %d, chat %d", ErrNotAuthorized, userID, chatID)
	}
	companion, ok := c.OtherParticipant(userID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: id %d has no companion", ErrChatNotFound, chatID)
	}
	return c, companion, nil
}
