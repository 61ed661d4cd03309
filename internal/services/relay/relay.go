// File: internal/services/relay/relay.go
package relay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/appleaww/messenger/internal/auth"
	"github.com/appleaww/messenger/internal/domain"
	"github.com/appleaww/messenger/internal/dtos"
	"github.com/appleaww/messenger/internal/events"
	"github.com/appleaww/messenger/internal/repository/chat"
	"github.com/appleaww/messenger/internal/repository/message"
	"github.com/appleaww/messenger/internal/services"
)

// Delivery destinations for relayed events.
const (
	QueueChatMessages = "/queue/chat-messages"
	QueueReadReceipts = "/queue/read-receipts"
	QueueTypingEvents = "/queue/typing-events"
)

// Deliverer is the transport's addressed-send primitive: one payload fanned
// out to every live session of one user. Delivery is best-effort with no
// acknowledgment; a test double can record calls instead of sending bytes.
type Deliverer interface {
	SendToUser(userID uint, destination string, payload interface{})
}

// Relay applies the two-party authorization rule to validated chat actions
// and routes the resulting events to the right recipients.
type Relay struct {
	chats     chat.ChatRepository
	messages  message.MessageRepository
	deliverer Deliverer
	bus       events.Publisher
	logger    services.Logger
	now       func() time.Time

	sentCount atomic.Uint64
}

func NewRelay(chats chat.ChatRepository, messages message.MessageRepository, deliverer Deliverer, bus events.Publisher, logger services.Logger) *Relay {
	return &Relay{
		chats:     chats,
		messages:  messages,
		deliverer: deliverer,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// resolve loads the chat and enforces the two-party authorization rule,
// returning the chat and the other participant.
func (r *Relay) resolve(ctx context.Context, chatID, actorID uint) (*domain.Chat, *domain.User, error) {
	c, err := r.chats.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, chat.ErrChatNotFound) {
			return nil, nil, fmt.Errorf("%w: chat %d", ErrChatNotFound, chatID)
		}
		return nil, nil, fmt.Errorf("fetching chat %d: %w", chatID, err)
	}
	if !c.HasParticipant(actorID) {
		return nil, nil, fmt.Errorf("%w: user %d, chat %d", ErrNotParticipant, actorID, chatID)
	}
	recipient, ok := c.OtherParticipant(actorID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: chat %d", ErrRecipientNotFound, chatID)
	}
	return c, recipient, nil
}

// Send appends a message to the chat and fans the created event out to both
// participants' sessions. The sender's own other devices receive it too, so
// a message sent from one tab shows up in the rest.
//
// Send is not idempotent: every call creates a new message. Retry
// deduplication is the caller's concern.
func (r *Relay) Send(ctx context.Context, chatID uint, content string, sender *auth.Principal) (*dtos.MessageCreated, error) {
	started := r.now()

	c, recipient, err := r.resolve(ctx, chatID, sender.UserID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:      c.ID,
		SenderID:    sender.UserID,
		Content:     content,
		SendingTime: r.now(),
		IsRead:      false,
	}
	msg, err = r.messages.Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("creating message in chat %d: %w", chatID, err)
	}

	created := &dtos.MessageCreated{
		MessageID:   msg.ID,
		ChatID:      c.ID,
		SenderID:    sender.UserID,
		RecipientID: recipient.ID,
		Content:     msg.Content,
		SendingTime: msg.SendingTime,
		IsRead:      msg.IsRead,
	}

	r.deliverer.SendToUser(sender.UserID, QueueChatMessages, created)
	r.deliverer.SendToUser(recipient.ID, QueueChatMessages, created)

	sent := r.sentCount.Add(1)
	r.bus.Publish(events.TopicTechnicalMetrics, strconv.FormatUint(uint64(sender.UserID), 10), events.TechnicalEvent{
		Type:       events.EventMessageSent,
		UserID:     strconv.FormatUint(uint64(sender.UserID), 10),
		LatencyMS:  r.now().Sub(started).Milliseconds(),
		Throughput: sent,
		Timestamp:  r.now(),
	})

	r.logger.Debug("message relayed", "chat_id", c.ID, "message_id", msg.ID, "sender_id", sender.UserID, "recipient_id", recipient.ID)
	return created, nil
}

// MarkRead flips the read flag on the named messages, skipping any the
// reader authored, and notifies the other participant. Applying the same set
// twice marks nothing new the second time.
func (r *Relay) MarkRead(ctx context.Context, chatID uint, messageIDs []uint, reader *auth.Principal) (*dtos.ReadReceiptApplied, error) {
	c, recipient, err := r.resolve(ctx, chatID, reader.UserID)
	if err != nil {
		return nil, err
	}

	msgs, err := r.messages.FindAllByIDs(ctx, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching messages for read receipt in chat %d: %w", chatID, err)
	}

	// A user can never mark their own sent messages as read.
	var toMark []uint
	for _, m := range msgs {
		if m.SenderID != reader.UserID && !m.IsRead {
			toMark = append(toMark, m.ID)
		}
	}
	if len(toMark) > 0 {
		if err := r.messages.MarkRead(ctx, toMark); err != nil {
			return nil, fmt.Errorf("marking messages read in chat %d: %w", chatID, err)
		}
	}

	applied := &dtos.ReadReceiptApplied{
		ChatID:      c.ID,
		MessageIDs:  messageIDs,
		ReaderID:    reader.UserID,
		RecipientID: recipient.ID,
	}

	// The reader already knows; only the other participant is told.
	r.deliverer.SendToUser(recipient.ID, QueueReadReceipts, applied)

	r.logger.Debug("read receipt relayed", "chat_id", c.ID, "reader_id", reader.UserID, "marked", len(toMark))
	return applied, nil
}

// Typing forwards a transient typing notice to the other participant.
// Nothing is persisted.
func (r *Relay) Typing(ctx context.Context, chatID uint, isTyping bool, typist *auth.Principal) (*dtos.TypingState, error) {
	c, recipient, err := r.resolve(ctx, chatID, typist.UserID)
	if err != nil {
		return nil, err
	}

	state := &dtos.TypingState{
		ChatID:      c.ID,
		UserID:      typist.UserID,
		Username:    typist.Username,
		RecipientID: recipient.ID,
		IsTyping:    isTyping,
	}
	r.deliverer.SendToUser(recipient.ID, QueueTypingEvents, state)
	return state, nil
}
