// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/appleaww/messenger/internal/auth"
	"github.com/appleaww/messenger/internal/domain"
	"github.com/appleaww/messenger/internal/dtos"
	"github.com/appleaww/messenger/internal/repository/user"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type AuthService struct {
	userRepo user.UserRepository
	codec    *auth.Codec
	logger   Logger
}

func NewAuthService(userRepo user.UserRepository, codec *auth.Codec, logger Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codec:    codec,
		logger:   logger,
	}
}

// Register creates a new user account after validating input and uniqueness.
func (s *AuthService) Register(ctx context.Context, name, username, email, password string) (*domain.User, error) {
	if err := s.validateRegistrationInput(name, username, email, password); err != nil {
		s.logger.Warn("registration validation failed",
			"username", mask(username),
			"error", err.Error())
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		s.logger.Warn("registration failed - email already exists", "email", mask(email))
		return nil, errors.New("user with this email already exists")
	}
	if existing, err := s.userRepo.FindByUsername(ctx, username); err == nil && existing != nil {
		s.logger.Warn("registration failed - username already exists", "username", mask(username))
		return nil, errors.New("username already taken")
	}

	u := &domain.User{
		Name:     name,
		Username: username,
		Email:    email,
		Role:     domain.RoleUser,
	}
	if err := u.HashPassword(password); err != nil {
		s.logger.Error("password hashing failed", "error", err, "username", mask(username))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		s.logger.Error("user creation failed", "error", err, "username", mask(username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", created.ID, "username", mask(username))
	return created, nil
}

// Login authenticates a user and mints an identity token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dtos.AuthenticationResponse, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed - user not found", "email", mask(email))
		return nil, errors.New("invalid credentials")
	}
	if err := u.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "user_id", u.ID)
		return nil, errors.New("invalid credentials")
	}

	token, err := s.codec.Issue(u.ID, u.Role)
	if err != nil {
		s.logger.Error("token issue failed", "error", err, "user_id", u.ID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "user_id", u.ID, "role", u.Role)
	return &dtos.AuthenticationResponse{
		Token:  token,
		UserID: u.ID,
		Role:   string(u.Role),
	}, nil
}

func (s *AuthService) validateRegistrationInput(name, username, email, password string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username must be 3-20 characters, alphanumeric or underscore")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
