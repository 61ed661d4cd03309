package message

import (
	"context"

	"github.com/appleaww/messenger/internal/domain"
)

// MessageRepository handles message data operations.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindAllByIDs(ctx context.Context, messageIDs []uint) ([]domain.Message, error)
	FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageIDs []uint) error
}
