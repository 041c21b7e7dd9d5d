// Command sandbox runs a local storefront backend: a sqlite-backed
// implementation of the cart and product endpoints the cart client talks to.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/marketplace/storefront/internal/application/identity"
	"github.com/marketplace/storefront/internal/infrastructure/auth"
	"github.com/marketplace/storefront/internal/infrastructure/config"
	"github.com/marketplace/storefront/internal/infrastructure/logger"
	"github.com/marketplace/storefront/internal/infrastructure/migration"
	"github.com/marketplace/storefront/internal/infrastructure/persistence"
	"github.com/marketplace/storefront/internal/infrastructure/telemetry"
	"github.com/marketplace/storefront/internal/interfaces/http/handler"
	"github.com/marketplace/storefront/internal/interfaces/http/middleware"
	"github.com/marketplace/storefront/internal/interfaces/http/router"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting storefront sandbox",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.Sandbox.Port),
		zap.String("dsn", cfg.Sandbox.DSN),
	)

	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.FromAppConfig(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(cfg.Sandbox.DSN, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := migration.New(db.DB, log).Up(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if cfg.Sandbox.Seed {
		if err := persistence.Seed(context.Background(), db.DB); err != nil {
			log.Fatal("Failed to seed database", zap.Error(err))
		}
		log.Info("Demo data ready", zap.String("username", persistence.DemoUsername))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	users := persistence.NewGormUserRepository(db.DB)

	engine := router.NewSandboxEngine(router.SandboxConfig{
		Logger:      log,
		Tokens:      jwtService,
		Cart:        handler.NewCartHandler(persistence.NewGormCartRepository(db.DB)),
		Products:    handler.NewProductHandler(persistence.NewGormProductRepository(db.DB)),
		Auth:        handler.NewAuthHandler(identityapp.NewAuthService(users, jwtService, log)),
		System:      handler.NewSystemHandler(db),
		MaxBodySize: cfg.Sandbox.MaxBodySize,
		CORSOrigins: cfg.Sandbox.CORSOrigins,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Sandbox.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Sandbox.ReadTimeout,
		WriteTimeout: cfg.Sandbox.WriteTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}
