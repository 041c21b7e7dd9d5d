package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketplace/storefront/internal/application/identity"
	"github.com/marketplace/storefront/internal/interfaces/http/dto"
	"github.com/marketplace/storefront/internal/interfaces/http/middleware"
)

// Authenticator logs users in
type Authenticator interface {
	Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	auth Authenticator
	now  func() time.Time
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth, now: time.Now}
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with username and password and receive a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=dto.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   int(result.ExpiresAt.Sub(h.now()).Seconds()),
		Username:    result.Username,
	})
}
