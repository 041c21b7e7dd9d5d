package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/marketplace/storefront/internal/domain/identity"
	"github.com/marketplace/storefront/internal/domain/shared"
	"github.com/marketplace/storefront/internal/infrastructure/auth"
	"github.com/marketplace/storefront/internal/infrastructure/config"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("demo", "demo-password")
	require.NoError(t, err)
	user.ID = 7
	return user
}

func newTestAuthService(t *testing.T, repo *MockUserRepository) (*AuthService, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "test-issuer",
	})
	return NewAuthService(repo, jwtService, zaptest.NewLogger(t)), jwtService
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc, jwtService := newTestAuthService(t, repo)
	user := newTestUser(t)

	repo.On("FindByUsername", ctx, "demo").Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)

	result, err := svc.Login(ctx, LoginInput{Username: " demo ", Password: "demo-password"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.UserID)
	assert.Equal(t, "Bearer", result.TokenType)
	require.NotNil(t, user.LastLoginAt)

	claims, err := jwtService.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "demo", claims.Username)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(t, repo)
		repo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: "whatever-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(t, repo)
		repo.On("FindByUsername", ctx, "demo").Return(newTestUser(t), nil)

		_, err := svc.Login(ctx, LoginInput{Username: "demo", Password: "wrong-password"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(t, repo)
	dbErr := errors.New("database is locked")
	repo.On("FindByUsername", ctx, "demo").Return(nil, dbErr)

	_, err := svc.Login(ctx, LoginInput{Username: "demo", Password: "demo-password"})
	assert.ErrorIs(t, err, dbErr)
}

func TestAuthService_Login_SaveFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(t, repo)
	user := newTestUser(t)
	repo.On("FindByUsername", ctx, "demo").Return(user, nil)
	repo.On("Save", ctx, user).Return(errors.New("disk full"))

	result, err := svc.Login(ctx, LoginInput{Username: "demo", Password: "demo-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
}
