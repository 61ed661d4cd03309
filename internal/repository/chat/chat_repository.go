// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/appleaww/messenger/internal/domain"
)

var ErrChatNotFound = errors.New("chat not found")

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if len(chat.Participants) != 2 {
		return nil, errors.New("chat requires exactly two participants")
	}

	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		log.Printf("[ChatRepository] Database error during chat creation: %v", err)
		return nil, errors.New("database error creating chat")
	}
	return chat, nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, id uint) (*domain.Chat, error) {
	if id == 0 {
		return nil, errors.New("invalid chat ID")
	}
	var chat domain.Chat
	err := r.db.WithContext(ctx).Preload("Participants").First(&chat, id).Error
	return r.handleFindError(err, &chat)
}

func (r *gormChatRepository) FindWithMessages(ctx context.Context, id uint) (*domain.Chat, error) {
	if id == 0 {
		return nil, errors.New("invalid chat ID")
	}
	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sending_time ASC, id ASC")
		}).
		First(&chat, id).Error
	return r.handleFindError(err, &chat)
}

func (r *gormChatRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Chat, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN user_chats uc ON uc.chat_id = chats.id AND uc.user_id = ?", userID).
		Preload("Participants").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sending_time ASC, id ASC")
		}).
		Find(&chats).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error finding chats for user ID %d: %v", userID, err)
		return nil, errors.New("database error fetching chats")
	}
	return chats, nil
}

// FindExistingChatBetween returns the chat shared by both users, if any.
func (r *gormChatRepository) FindExistingChatBetween(ctx context.Context, firstUserID, secondUserID uint) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN user_chats uc1 ON uc1.chat_id = chats.id AND uc1.user_id = ?", firstUserID).
		Joins("JOIN user_chats uc2 ON uc2.chat_id = chats.id AND uc2.user_id = ?", secondUserID).
		Preload("Participants").
		First(&chat).Error
	return r.handleFindError(err, &chat)
}

func (r *gormChatRepository) UpdateLastMessage(ctx context.Context, chatID uint, lastMessage string) error {
	if chatID == 0 {
		return errors.New("invalid chat ID")
	}
	result := r.db.WithContext(ctx).Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("last_message", lastMessage)
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating last message for chat ID %d: %v", chatID, result.Error)
		return errors.New("database error updating chat")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (r *gormChatRepository) Delete(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return errors.New("invalid chat ID")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_chats WHERE chat_id = ?", chatID).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Chat{}, chatID).Error
	})
	if err != nil {
		log.Printf("[ChatRepository] Database error deleting chat ID %d: %v", chatID, err)
		return errors.New("database error deleting chat")
	}
	return nil
}

func (r *gormChatRepository) handleFindError(err error, chat *domain.Chat) (*domain.Chat, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		log.Printf("[ChatRepository] Database error during chat lookup: %v", err)
		return nil, errors.New("database error fetching chat")
	}
	return chat, nil
}
