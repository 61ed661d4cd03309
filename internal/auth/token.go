// File: internal/auth/token.go
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/appleaww/messenger/internal/domain"
)

// ErrInvalidToken is returned for every verification failure. Malformed,
// forged and expired tokens are indistinguishable to callers so the error
// cannot be used as an oracle.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity claims embedded in every issued token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed identity tokens. It is stateless: a token
// is a pure function of the subject, the shared secret and the clock.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a token for the user with the configured TTL.
func (c *Codec) Issue(userID uint, role domain.Role) (string, error) {
	if userID == 0 {
		return "", errors.New("user ID cannot be zero")
	}

	now := c.now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates the signature and expiry and returns the subject identity.
func (c *Codec) Verify(tokenString string) (uint, domain.Role, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, "", ErrInvalidToken
	}

	return uint(userID), domain.Role(claims.Role), nil
}
