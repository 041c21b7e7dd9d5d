package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	cartapp "github.com/marketplace/storefront/internal/application/cart"
	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/infrastructure/auth"
	"github.com/marketplace/storefront/internal/infrastructure/cache"
	"github.com/marketplace/storefront/internal/infrastructure/config"
	"github.com/marketplace/storefront/internal/infrastructure/event"
	"github.com/marketplace/storefront/internal/infrastructure/logger"
	"github.com/marketplace/storefront/internal/infrastructure/storage"
	"github.com/marketplace/storefront/internal/infrastructure/storefront"
	"github.com/marketplace/storefront/internal/infrastructure/telemetry"
)

// App is the cart client wired from configuration for one command run
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Session  *auth.Session
	Client   *storefront.Client
	Store    *cartapp.LocalStore
	Notices  *cartapp.NoticeRecorder
	Provider *cartapp.Provider

	bus     *event.InMemoryEventBus
	closers []func() error
}

// OpenApp loads configuration from configPath and wires the cart client
func OpenApp(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create logger", err)
	}

	app := &App{Config: cfg, Logger: log}
	if err := app.wire(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg, log := a.Config, a.Logger

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.FromAppConfig(cfg.Telemetry), log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize telemetry", err)
	}
	a.closers = append(a.closers, func() error { return tp.Shutdown(context.Background()) })

	storageFactory := storage.NewFactory(cfg.Storage, cfg.Redis, storage.WithLogger(log))
	a.closers = append(a.closers, storageFactory.Close)
	slot, err := storageFactory.CreateStorage()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open storage", err)
	}

	client, err := storefront.NewClient(storefront.FromAppConfig(cfg.Backend), storefront.WithLogger(log))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create storefront client", err)
	}

	readCache, err := cache.NewCartCacheFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create cart cache", err)
	}
	if c, ok := readCache.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}

	a.bus = event.NewInMemoryEventBus(log)
	a.Notices = cartapp.NewNoticeRecorder(ctx,
		cartapp.WithNoticeStorage(slot),
		cartapp.WithNoticeLogger(log),
	)
	a.bus.Subscribe(a.Notices)

	a.Session = auth.OpenSession(ctx, slot, auth.WithSessionLogger(log))
	a.Client = client
	a.Store = cartapp.NewLocalStore(slot,
		cartapp.WithProductLookup(client),
		cartapp.WithStoreLogger(log),
	).Open(ctx)

	remote := cartapp.NewRemoteStrategy(client, a.Session,
		cartapp.WithCartCache(readCache, cfg.Cache.TTL),
		cartapp.WithRemoteLogger(log),
	)
	reconciler := cartapp.NewReconciler(a.Store, client, a.Session,
		cartapp.WithReconcilerLogger(log),
		cartapp.WithReconcilerPublisher(a.bus),
		cartapp.WithCacheInvalidator(remote),
	)
	a.Session.Subscribe(reconciler)

	a.Provider = cartapp.NewProvider(a.Session, cartapp.NewGuestStrategy(a.Store), remote, reconciler,
		cartapp.WithPublisher(a.bus),
		cartapp.WithProviderLogger(log),
	)
	return nil
}

// Close stops the event bus and releases storage and cache connections
func (a *App) Close() error {
	var errs []error
	if a.bus != nil {
		errs = append(errs, a.bus.Stop(context.Background()))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close app: %w", err)
	}
	return nil
}

var _ cart.ProductLookup = (*storefront.Client)(nil)
