package chat

import (
	"context"

	"github.com/appleaww/messenger/internal/domain"
)

// ChatRepository handles chat data operations. FindByID preloads the
// participant pair; FindWithMessages additionally preloads the ordered
// message history.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, id uint) (*domain.Chat, error)
	FindWithMessages(ctx context.Context, id uint) (*domain.Chat, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Chat, error)
	FindExistingChatBetween(ctx context.Context, firstUserID, secondUserID uint) (*domain.Chat, error)
	UpdateLastMessage(ctx context.Context, chatID uint, lastMessage string) error
	Delete(ctx context.Context, chatID uint) error
}
