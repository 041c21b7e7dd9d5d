package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace/storefront/internal/infrastructure/auth"
	"github.com/marketplace/storefront/internal/infrastructure/config"
	"github.com/marketplace/storefront/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: expiration,
		Issuer:                "test-issuer",
	})
}

func newProtectedRouter(validator TokenValidator) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.POST("/auth/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	guarded := router.Group("/", JWTAuth(JWTMiddlewareConfig{Validator: validator}))
	guarded.GET("/cart", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
	})
	guarded.GET("/products/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
	})
	return router
}

func decodeError(t *testing.T, body []byte) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	token, err := jwtService.GenerateToken(42, "demo")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token.Token)
	newProtectedRouter(jwtService).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42}`, w.Body.String())
}

func TestJWTAuth_Rejections(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	expired, err := newTestJWTService(-time.Minute).GenerateToken(42, "demo")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"basic scheme", "Basic dXNlcjpwYXNz", dto.ErrCodeTokenInvalid},
		{"empty bearer", BearerPrefix, dto.ErrCodeTokenInvalid},
		{"garbage token", BearerPrefix + "not.a.jwt", dto.ErrCodeTokenInvalid},
		{"expired token", BearerPrefix + expired.Token, dto.ErrCodeTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			newProtectedRouter(jwtService).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			info := decodeError(t, w.Body.Bytes())
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, w.Header().Get(RequestIDHeader), info.RequestID)
		})
	}
}

func TestJWTAuth_GuardsEveryMountedPath(t *testing.T) {
	router := newProtectedRouter(newTestJWTService(time.Minute))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/101", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code, "routes outside the group stay public")
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	other := auth.NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-of-enough-size",
		AccessTokenExpiration: time.Minute,
		Issuer:                "test-issuer",
	})
	token, err := other.GenerateToken(1, "demo")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token.Token)
	newProtectedRouter(newTestJWTService(time.Minute)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, w.Body.Bytes()).Code)
}

func TestGetJWTUserID_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, GetJWTUserID(c))

	c.Set(JWTUserIDKey, "42")
	assert.Zero(t, GetJWTUserID(c), "only int64 ids are accepted")
}
