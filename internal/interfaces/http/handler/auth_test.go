package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marketplace/storefront/internal/application/identity"
	"github.com/marketplace/storefront/internal/interfaces/http/dto"
)

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func newAuthEngine(svc Authenticator, now time.Time) *gin.Engine {
	h := NewAuthHandler(svc)
	h.now = func() time.Time { return now }
	engine := gin.New()
	engine.POST("/auth/login", h.Login)
	return engine
}

func TestAuthHandler_Login(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := new(MockAuthenticator)
	svc.On("Login", mock.Anything, identity.LoginInput{Username: "demo", Password: "demo-password"}).
		Return(&identity.LoginResult{
			AccessToken: "tok",
			TokenType:   "Bearer",
			ExpiresAt:   now.Add(time.Hour),
			UserID:      1,
			Username:    "demo",
		}, nil)

	w := doJSON(t, newAuthEngine(svc, now), http.MethodPost, "/auth/login",
		dto.LoginRequest{Username: "demo", Password: "demo-password"})
	require.Equal(t, http.StatusOK, w.Code)

	var body dto.LoginResponse
	decodeResponse(t, w, &body)
	assert.Equal(t, dto.LoginResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600, Username: "demo"}, body)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := new(MockAuthenticator)
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, identity.ErrInvalidCredentials)

	w := doJSON(t, newAuthEngine(svc, time.Now()), http.MethodPost, "/auth/login",
		dto.LoginRequest{Username: "demo", Password: "not-the-password"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, decodeResponse(t, w, nil).Error.Code)
}

func TestAuthHandler_Login_Validation(t *testing.T) {
	svc := new(MockAuthenticator)

	w := doJSON(t, newAuthEngine(svc, time.Now()), http.MethodPost, "/auth/login", `{"username":"demo","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}
