package service

import (
	"errors"
	"fmt"
	"strings"

	"vstepprep/internal/models"
	"vstepprep/internal/security"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore is the account access the auth service needs
type UserStore interface {
	CreateUser(email, passwordHash, name string, role models.Role) (*models.User, error)
	CreateOAuthUser(provider, subject, email, name string, role models.Role) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserByOAuth(provider, subject string) (*models.User, error)
	UpdateOAuthLink(userID int64, provider, subject string) error
}

// AuthService handles registration, login and OAuth sign-in
type AuthService struct {
	users  UserStore
	tokens *security.TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new account and returns the user with an access token
func (s *AuthService) Register(email, password, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(email, passwordHash, name, models.RoleStudent)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with an access token
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.PasswordHash == "" || !security.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// OAuthLogin signs in a user identified by an OAuth provider. An account is
// created on first sign-in; an existing account with the same email gets the
// identity linked instead.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up oauth user: %w", err)
	}

	if user == nil {
		user, err = s.users.GetUserByEmail(email)
		if err != nil {
			return nil, "", fmt.Errorf("failed to look up user by email: %w", err)
		}
		if user != nil {
			if err := s.users.UpdateOAuthLink(user.ID, provider, subject); err != nil {
				return nil, "", fmt.Errorf("failed to link oauth identity: %w", err)
			}
			user.OAuthProvider = provider
			user.OAuthSubject = subject
		} else {
			user, err = s.users.CreateOAuthUser(provider, subject, email, name, models.RoleStudent)
			if err != nil {
				return nil, "", fmt.Errorf("failed to create oauth user: %w", err)
			}
		}
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser returns the user for an id
func (s *AuthService) GetUser(id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
