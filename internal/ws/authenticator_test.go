// File: internal/ws/authenticator_test.go
package ws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appleaww/messenger/internal/auth"
	"github.com/appleaww/messenger/internal/domain"
	"github.com/appleaww/messenger/internal/repository/user"
	"github.com/appleaww/messenger/internal/services"
)

type fakeUserRepo struct {
	users   map[uint]*domain.User
	findErr error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error { return nil }

func (f *fakeUserRepo) UpdatePresence(ctx context.Context, userID uint, online bool, lastSeen time.Time) error {
	return nil
}

func newTestAuthenticator(t *testing.T) (*Authenticator, *auth.Codec, *fakeUserRepo) {
	t.Helper()
	codec := auth.NewCodec("test-secret", time.Hour)
	repo := &fakeUserRepo{users: map[uint]*domain.User{
		7: {ID: 7, Username: "alice", Role: domain.RoleUser},
	}}
	return NewAuthenticator(codec, repo, &services.NoOpLogger{}), codec, repo
}

func TestAuthenticator_Authenticate(t *testing.T) {
	a, codec, _ := newTestAuthenticator(t)

	token, err := codec.Issue(7, domain.RoleUser)
	require.NoError(t, err)

	principal, err := a.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), principal.UserID)
	assert.Equal(t, "alice", principal.Username)
	assert.Equal(t, domain.RoleUser, principal.Role)
}

func TestAuthenticator_Authenticate_MissingHeader(t *testing.T) {
	a, _, _ := newTestAuthenticator(t)

	_, err := a.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestAuthenticator_Authenticate_MalformedHeader(t *testing.T) {
	a, codec, _ := newTestAuthenticator(t)

	token, err := codec.Issue(7, domain.RoleUser)
	require.NoError(t, err)

	for _, header := range []string{token, "Basic " + token, "bearer " + token} {
		_, err := a.Authenticate(context.Background(), header)
		assert.ErrorIs(t, err, ErrMissingCredential, "header %q", header)
	}
}

func TestAuthenticator_Authenticate_BadToken(t *testing.T) {
	a, _, _ := newTestAuthenticator(t)

	_, err := a.Authenticate(context.Background(), "Bearer not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticator_Authenticate_ForgedToken(t *testing.T) {
	a, _, _ := newTestAuthenticator(t)

	forged, err := auth.NewCodec("other-secret", time.Hour).Issue(7, domain.RoleUser)
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), "Bearer "+forged)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticator_Authenticate_UnknownUser(t *testing.T) {
	a, codec, _ := newTestAuthenticator(t)

	token, err := codec.Issue(999, domain.RoleUser)
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestAuthenticator_Authenticate_LookupFailureSurfaced(t *testing.T) {
	a, codec, repo := newTestAuthenticator(t)
	repo.findErr = errors.New("database error fetching user")

	token, err := codec.Issue(7, domain.RoleUser)
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), "Bearer "+token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownUser, "a repository outage is not a missing user")
}
