package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_BasePath(t *testing.T) {
	assert.Equal(t, "/api/v1", NewRouter(gin.New()).BasePath())
	assert.Equal(t, "/api/v2", NewRouter(gin.New(), WithAPIVersion("v2")).BasePath())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("/cart").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
		POST("/items", func(c *gin.Context) { c.String(http.StatusCreated, "add") }).
		PUT("/items", func(c *gin.Context) { c.String(http.StatusOK, "update") }).
		DELETE("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, "delete "+c.Param("id")) })
	NewRouter(engine).Register(g).Setup()

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/api/v1/cart", http.StatusOK, "list"},
		{http.MethodPost, "/api/v1/cart/items", http.StatusCreated, "add"},
		{http.MethodPut, "/api/v1/cart/items", http.StatusOK, "update"},
		{http.MethodDelete, "/api/v1/cart/items/9", http.StatusOK, "delete 9"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestDomainGroup_MiddlewareScopedToGroup(t *testing.T) {
	engine := gin.New()
	guarded := NewDomainGroup("/cart").
		Use(func(c *gin.Context) {
			c.AbortWithStatus(http.StatusUnauthorized)
		}).
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	guarded.Group("/items").
		POST("", func(c *gin.Context) { c.Status(http.StatusOK) })
	open := NewDomainGroup("/products").
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	NewRouter(engine).Register(guarded).Register(open).Setup()

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/cart").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/api/v1/cart/items").Code, "subgroups inherit middleware")
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/products").Code)
}

