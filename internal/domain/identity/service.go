package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebook/carebook/internal/platform/auth"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	users  UserRepository
	tokens auth.TokenConfig
}

func NewService(users UserRepository, tokens auth.TokenConfig) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates a user with a bcrypt-hashed password and returns the user
// together with a signed token.
func (s *Service) Register(ctx context.Context, email, name, password string, role auth.Role) (*User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, "", fmt.Errorf("email is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, "", fmt.Errorf("name is required")
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("password must be at least 6 characters")
	}
	if role != auth.RolePatient && role != auth.RoleAdmin {
		return nil, "", fmt.Errorf("role must be %q or %q", auth.RolePatient, auth.RoleAdmin)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &User{Email: email, Name: name, PasswordHash: string(hash), Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := auth.IssueToken(s.tokens, u.ID.String(), u.Name, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns the user with a signed token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.tokens, u.ID.String(), u.Name, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}
