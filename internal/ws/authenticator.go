// File: internal/ws/authenticator.go
package ws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/appleaww/messenger/internal/auth"
	"github.com/appleaww/messenger/internal/repository/user"
	"github.com/appleaww/messenger/internal/services"
)

var (
	// ErrMissingCredential means the handshake carried no usable
	// Authorization header.
	ErrMissingCredential = errors.New("missing authorization header")

	// ErrUnauthenticated means the presented token failed verification.
	ErrUnauthenticated = errors.New("authentication failed")

	// ErrUnknownUser means the token was valid but its subject no longer
	// exists.
	ErrUnknownUser = errors.New("unknown user")
)

const bearerPrefix = "Bearer "

// Authenticator resolves the handshake credential to a Principal. It runs
// exactly once per connection, at establishment time; later frames ride on
// the Principal it attached. It never touches presence state - becoming
// online is the dispatcher's business, triggered separately once the
// connection is fully established.
type Authenticator struct {
	codec  *auth.Codec
	users  user.UserRepository
	logger services.Logger
}

func NewAuthenticator(codec *auth.Codec, users user.UserRepository, logger services.Logger) *Authenticator {
	return &Authenticator{codec: codec, users: users, logger: logger}
}

// Authenticate validates the Authorization header of a handshake request.
func (a *Authenticator) Authenticate(ctx context.Context, authorization string) (*auth.Principal, error) {
	if authorization == "" || !strings.HasPrefix(authorization, bearerPrefix) {
		a.logger.Warn("handshake rejected - missing or malformed authorization header")
		return nil, ErrMissingCredential
	}

	token := strings.TrimPrefix(authorization, bearerPrefix)
	userID, _, err := a.codec.Verify(token)
	if err != nil {
		a.logger.Warn("handshake rejected - token verification failed")
		return nil, ErrUnauthenticated
	}

	u, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			a.logger.Warn("handshake rejected - token subject not found", "user_id", userID)
			return nil, ErrUnknownUser
		}
		a.logger.Error("handshake failed - user lookup error", "user_id", userID, "error", err)
		return nil, fmt.Errorf("looking up user %d: %w", userID, err)
	}

	a.logger.Info("handshake authenticated", "user_id", u.ID)
	return &auth.Principal{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	}, nil
}
