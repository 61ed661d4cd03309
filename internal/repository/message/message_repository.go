// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/appleaww/messenger/internal/domain"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if message.ChatID == 0 || message.SenderID == 0 {
		return nil, errors.New("message requires a chat and a sender")
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		log.Printf("[MessageRepository] Database error during message creation in chat ID %d: %v", message.ChatID, err)
		return nil, errors.New("database error creating message")
	}
	return message, nil
}

func (r *gormMessageRepository) FindAllByIDs(ctx context.Context, messageIDs []uint) ([]domain.Message, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var messages []domain.Message
	err := r.db.WithContext(ctx).Where("id IN ?", messageIDs).Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error fetching messages by IDs: %v", err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("sending_time ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error fetching messages for chat ID %d: %v", chatID, err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

// MarkRead flips the read flag to true for the given messages. Messages
// already read are unaffected, which keeps the operation idempotent.
func (r *gormMessageRepository) MarkRead(ctx context.Context, messageIDs []uint) error {
	if len(messageIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("id IN ?", messageIDs).
		Update("is_read", true).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error marking messages read: %v", err)
		return errors.New("database error updating messages")
	}
	return nil
}
