package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/infrastructure/logger"
	"github.com/marketplace/storefront/internal/interfaces/http/handler"
	"github.com/marketplace/storefront/internal/interfaces/http/middleware"
)

// SandboxConfig carries the handlers and settings of the sandbox backend
type SandboxConfig struct {
	Logger      *zap.Logger
	Tokens      middleware.TokenValidator
	Cart        *handler.CartHandler
	Products    *handler.ProductHandler
	Auth        *handler.AuthHandler
	System      *handler.SystemHandler
	MaxBodySize int64
	CORSOrigins []string
	Tracing     middleware.TracingConfig
}

// NewSandboxEngine builds the gin engine serving the sandbox cart API:
//
//	GET    /health
//	POST   /api/v1/auth/login
//	GET    /api/v1/products
//	GET    /api/v1/products/:id
//	GET    /api/v1/cart
//	POST   /api/v1/cart/items
//	PUT    /api/v1/cart/items
//	DELETE /api/v1/cart/items/:id
func NewSandboxEngine(cfg SandboxConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanErrorMarker(),
		middleware.Secure(),
		middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins...)),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.GET("/health", cfg.System.Health)

	r := NewRouter(engine)
	r.Register(NewDomainGroup("/auth").
		POST("/login", cfg.Auth.Login))
	r.Register(NewDomainGroup("/products").
		GET("", cfg.Products.List).
		GET("/:id", cfg.Products.GetByID))

	cartGroup := NewDomainGroup("/cart").
		Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{Validator: cfg.Tokens, Logger: log}), middleware.TracingAttributeInjector()).
		GET("", cfg.Cart.List)
	cartGroup.Group("/items").
		POST("", cfg.Cart.AddItems).
		PUT("", cfg.Cart.UpdateQuantity).
		DELETE("/:id", cfg.Cart.Delete)
	r.Register(cartGroup)
	r.Setup()

	return engine
}
