// File: internal/services/chat/service_test.go
package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appleaww/messenger/internal/domain"
	chatrepo "github.com/appleaww/messenger/internal/repository/chat"
	"github.com/appleaww/messenger/internal/services"
)

type fakeChatRepo struct {
	nextID       uint
	chats        map[uint]*domain.Chat
	lastMessages map[uint]string
	deleted      []uint
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{nextID: 1, chats: map[uint]*domain.Chat{}, lastMessages: map[uint]string{}}
}

func (f *fakeChatRepo) Create(ctx context.Context, c *domain.Chat) (*domain.Chat, error) {
	c.ID = f.nextID
	f.nextID++
	f.chats[c.ID] = c
	return c, nil
}

func (f *fakeChatRepo) FindByID(ctx context.Context, id uint) (*domain.Chat, error) {
	c, ok := f.chats[id]
	if !ok {
		return nil, chatrepo.ErrChatNotFound
	}
	return c, nil
}

func (f *fakeChatRepo) FindWithMessages(ctx context.Context, id uint) (*domain.Chat, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeChatRepo) FindByUserID(ctx context.Context, userID uint) ([]domain.Chat, error) {
	var out []domain.Chat
	for _, c := range f.chats {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) FindExistingChatBetween(ctx context.Context, firstUserID, secondUserID uint) (*domain.Chat, error) {
	for _, c := range f.chats {
		if c.HasParticipant(firstUserID) && c.HasParticipant(secondUserID) {
			return c, nil
		}
	}
	return nil, chatrepo.ErrChatNotFound
}

func (f *fakeChatRepo) UpdateLastMessage(ctx context.Context, chatID uint, lastMessage string) error {
	if _, ok := f.chats[chatID]; !ok {
		return chatrepo.ErrChatNotFound
	}
	f.lastMessages[chatID] = lastMessage
	f.chats[chatID].LastMessage = lastMessage
	return nil
}

func (f *fakeChatRepo) Delete(ctx context.Context, chatID uint) error {
	delete(f.chats, chatID)
	f.deleted = append(f.deleted, chatID)
	return nil
}

type fakeMessageRepo struct {
	marked [][]uint
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	return m, nil
}

func (f *fakeMessageRepo) FindAllByIDs(ctx context.Context, messageIDs []uint) ([]domain.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, messageIDs []uint) error {
	f.marked = append(f.marked, messageIDs)
	return nil
}

type fakeUserRepo struct {
	users map[uint]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uint]*domain.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error { return nil }

func (f *fakeUserRepo) UpdatePresence(ctx context.Context, userID uint, online bool, lastSeen time.Time) error {
	return nil
}

func newTestService() (*Service, *fakeChatRepo, *fakeMessageRepo, *fakeUserRepo) {
	chats := newFakeChatRepo()
	messages := &fakeMessageRepo{}
	users := newFakeUserRepo(
		&domain.User{ID: 1, Name: "Alice", Username: "alice"},
		&domain.User{ID: 2, Name: "Bob", Username: "bob"},
		&domain.User{ID: 3, Name: "Carol", Username: "carol"},
	)
	svc := NewService(chats, messages, users, &services.NoOpLogger{})
	return svc, chats, messages, users
}

func TestService_Create(t *testing.T) {
	svc, _, _, _ := newTestService()

	resp, err := svc.Create(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint(2), resp.CompanionID)
	assert.Equal(t, "Bob", resp.CompanionName)
	assert.Equal(t, domain.DefaultLastMessage, resp.LastMessage)
}

func TestService_Create_SelfChat(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, "alice")
	assert.ErrorIs(t, err, ErrSelfChat)
}

func TestService_Create_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "bob")
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, "bob")
	assert.ErrorIs(t, err, ErrChatExists)

	// Same pair from the other side is also rejected.
	_, err = svc.Create(ctx, 2, "alice")
	assert.ErrorIs(t, err, ErrChatExists)
}

func TestService_Create_UnknownCompanion(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func seedChat(chats *fakeChatRepo, id uint, msgs ...domain.Message) *domain.Chat {
	c := &domain.Chat{
		ID:          id,
		LastMessage: domain.DefaultLastMessage,
		Participants: []domain.User{
			{ID: 1, Name: "Alice", Username: "alice"},
			{ID: 2, Name: "Bob", Username: "bob"},
		},
		Messages: msgs,
	}
	chats.chats[id] = c
	return c
}

func TestService_List(t *testing.T) {
	svc, chats, _, _ := newTestService()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedChat(chats, 10,
		domain.Message{ID: 1, ChatID: 10, SenderID: 2, Content: "hi alice", SendingTime: base, IsRead: false},
		domain.Message{ID: 2, ChatID: 10, SenderID: 2, Content: "you there?", SendingTime: base.Add(time.Minute), IsRead: false},
	)

	items, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, uint(2), item.CompanionID)
	assert.Equal(t, "Bob", item.CompanionName)
	assert.Equal(t, "you there?", item.LastMessage, "summary reflects the newest message")
	assert.Equal(t, int64(2), item.UnreadMessagesCount)
}

func TestService_List_EmptyChatUsesStoredSummary(t *testing.T) {
	svc, chats, _, _ := newTestService()
	seedChat(chats, 10)

	items, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.DefaultLastMessage, items[0].LastMessage)
	assert.Zero(t, items[0].UnreadMessagesCount)
}

func TestService_List_SortedByLatestActivity(t *testing.T) {
	svc, chats, _, _ := newTestService()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedChat(chats, 10,
		domain.Message{ID: 1, ChatID: 10, SenderID: 2, Content: "old", SendingTime: base, IsRead: true},
	)
	chats.chats[20] = &domain.Chat{
		ID:          20,
		LastMessage: domain.DefaultLastMessage,
		Participants: []domain.User{
			{ID: 1, Name: "Alice", Username: "alice"},
			{ID: 3, Name: "Carol", Username: "carol"},
		},
		Messages: []domain.Message{
			{ID: 2, ChatID: 20, SenderID: 3, Content: "new", SendingTime: base.Add(time.Hour), IsRead: true},
		},
	}

	items, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint(20), items[0].ChatID, "most recent activity first")
	assert.Equal(t, uint(10), items[1].ChatID)
}

func TestService_Open_MarksForeignUnreadRead(t *testing.T) {
	svc, chats, messages, _ := newTestService()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedChat(chats, 10,
		domain.Message{ID: 1, ChatID: 10, SenderID: 2, Content: "unread from bob", SendingTime: base, IsRead: false},
		domain.Message{ID: 2, ChatID: 10, SenderID: 1, Content: "alice's own unread", SendingTime: base.Add(time.Minute), IsRead: false},
	)

	detail, err := svc.Open(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bob", detail.CompanionName)
	require.Len(t, detail.Messages, 2)

	require.Len(t, messages.marked, 1)
	assert.Equal(t, []uint{1}, messages.marked[0], "only the companion's unread messages are marked")

	assert.False(t, detail.Messages[1].IsRead, "the user's own unread message stays unread")
	assert.True(t, detail.Messages[1].IsMine)
}

func TestService_Open_NotParticipant(t *testing.T) {
	svc, chats, _, _ := newTestService()
	seedChat(chats, 10)

	_, err := svc.Open(context.Background(), 10, 3)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestService_Open_ChatNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Open(context.Background(), 404, 1)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestService_Close_SummarizesLatestMessage(t *testing.T) {
	svc, chats, _, _ := newTestService()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedChat(chats, 10,
		domain.Message{ID: 1, ChatID: 10, SenderID: 1, Content: "first", SendingTime: base, IsRead: true},
		domain.Message{ID: 2, ChatID: 10, SenderID: 2, Content: "latest", SendingTime: base.Add(time.Minute), IsRead: true},
	)

	require.NoError(t, svc.Close(context.Background(), 10, 1))
	assert.Equal(t, "latest", chats.lastMessages[10])
}

func TestService_Close_EmptyChatKeepsDefault(t *testing.T) {
	svc, chats, _, _ := newTestService()
	seedChat(chats, 10)

	require.NoError(t, svc.Close(context.Background(), 10, 1))
	assert.Equal(t, domain.DefaultLastMessage, chats.lastMessages[10])
}

func TestService_Delete(t *testing.T) {
	svc, chats, _, _ := newTestService()
	seedChat(chats, 10)

	require.NoError(t, svc.Delete(context.Background(), 10, 1))
	assert.Equal(t, []uint{10}, chats.deleted)

	err := svc.Delete(context.Background(), 10, 1)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestService_Delete_NotParticipant(t *testing.T) {
	svc, chats, _, _ := newTestService()
	seedChat(chats, 10)

	err := svc.Delete(context.Background(), 10, 3)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Empty(t, chats.deleted)
}
