package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"film_api/internal/models"
	"film_api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// AuthService handles user auth logic
type AuthService struct {
	authRepo repository.Authorization
	tokens   *TokenManager
	audit    AuditLog
}

func NewAuthService(repo repository.Authorization, tokens *TokenManager, audit AuditLog) *AuthService {
	return &AuthService{authRepo: repo, tokens: tokens, audit: audit}
}

// normalizeUsername makes usernames case-insensitive.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register validates input, hashes the password and creates a user with role.
// A taken username yields ErrDuplicateUsername; the store constraint decides.
func (s *AuthService) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, invalid("username is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, invalid("password must be at least %d characters", MinPasswordLength)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	id, err := s.authRepo.Create(ctx, username, hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, models.ActionRegister, models.ResourceUser, id, map[string]any{
			"username": username,
			"role":     role,
		})
	}
	return &models.User{ID: id, Username: username, Role: role}, nil
}

// Login validates credentials and returns a signed session token.
// Unknown user and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.authRepo.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(UserClaims{ID: u.ID, Username: u.Username, Role: u.Role})
}

// ParseToken verifies a session token and returns its user claim.
func (s *AuthService) ParseToken(accessToken string) (*UserClaims, error) {
	return s.tokens.Verify(accessToken)
}

// helper: hash password with a fresh random salt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", invalid("password must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
