// Package identity authenticates sandbox backend users.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/identity"
	"github.com/marketplace/storefront/internal/domain/shared"
	"github.com/marketplace/storefront/internal/infrastructure/auth"
)

// ErrInvalidCredentials is returned for an unknown user or wrong password
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// TokenIssuer issues access tokens
type TokenIssuer interface {
	GenerateToken(userID int64, username string) (*auth.AccessToken, error)
}

// LoginInput holds the credentials of a login attempt
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is a successful login
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	UserID      int64
	Username    string
}

// AuthService handles authentication operations
type AuthService struct {
	users  identity.UserRepository
	tokens TokenIssuer
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(users identity.UserRepository, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Login verifies the credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	s.logger.Info("Login attempt", zap.String("username", username))

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	user.RecordLogin(s.now())
	if err := s.users.Save(ctx, user); err != nil {
		// the token is already valid; a stale last-login is acceptable
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", user.Username),
		zap.Int64("user_id", user.ID))

	return &LoginResult{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		UserID:      user.ID,
		Username:    user.Username,
	}, nil
}
