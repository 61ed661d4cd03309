// File: internal/services/user_services/auth_service_test.go
package user_services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appleaww/messenger/internal/auth"
	"github.com/appleaww/messenger/internal/domain"
	"github.com/appleaww/messenger/internal/services"
)

type fakeUserRepo struct {
	nextID uint
	users  map[uint]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[uint]*domain.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	u.ID = f.nextID
	f.nextID++
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

func newTestAuthService() (*AuthService, *fakeUserRepo, *auth.Codec) {
	repo := newFakeUserRepo()
	codec := auth.NewCodec("test-secret", time.Hour)
	return NewAuthService(repo, codec, &services.NoOpLogger{}), repo, codec
}

func TestAuthService_Register(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	u, err := svc.Register(context.Background(), "Alice", "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "password123", u.Password, "password is stored hashed")
	assert.NoError(t, u.ValidatePassword("password123"))
	assert.Len(t, repo.users, 1)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	cases := []struct {
		name     string
		fullName string
		username string
		email    string
		password string
	}{
		{"empty name", "", "alice", "alice@example.com", "password123"},
		{"short username", "Alice", "al", "alice@example.com", "password123"},
		{"username with spaces", "Alice", "al ice", "alice@example.com", "password123"},
		{"bad email", "Alice", "alice", "not-an-email", "password123"},
		{"short password", "Alice", "alice", "alice@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.fullName, tc.username, tc.email, tc.password)
			assert.Error(t, err)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "other", "alice@example.com", "password123")
	assert.Error(t, err)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "alice", "other@example.com", "password123")
	assert.Error(t, err)
}

func TestAuthService_Login(t *testing.T) {
	svc, _, codec := newTestAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	resp, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resp.UserID)
	assert.Equal(t, string(domain.RoleUser), resp.Role)

	userID, role, err := codec.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
	assert.Equal(t, domain.RoleUser, role)
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong-password")
		assert.Error(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "password123")
		assert.Error(t, err)
	})

	t.Run("empty credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "")
		assert.Error(t, err)
	})
}
