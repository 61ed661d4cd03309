// File: internal/auth/principal.go
package auth

import "github.com/appleaww/messenger/internal/domain"

// Principal is the authenticated identity bound to a connection after a
// successful handshake. It stays attached for the connection's lifetime;
// no frame after the handshake is re-authenticated.
type Principal struct {
	UserID   uint
	Username string
	Role     domain.Role
}
