package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/domain/shared"
	"github.com/marketplace/storefront/internal/infrastructure/logger"
	"github.com/marketplace/storefront/internal/infrastructure/telemetry"
)

// guestOwner is the aggregate id used for events of a signed out cart
const guestOwner = "guest"

// Provider is the single cart interface for callers. It picks the guest or
// remote strategy per call from the current token and lets the reconciler
// observe the token before every operation. Failures are published as
// cart events and returned.
type Provider struct {
	tokens     cart.TokenSource
	guest      *GuestStrategy
	remote     *RemoteStrategy
	reconciler *Reconciler
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// ProviderOption configures a Provider
type ProviderOption func(*Provider)

// WithPublisher sets the publisher for cart events
func WithPublisher(publisher shared.EventPublisher) ProviderOption {
	return func(p *Provider) {
		p.publisher = publisher
	}
}

// WithProviderLogger sets the provider logger
func WithProviderLogger(logger *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider creates a provider over the two strategies and the reconciler
func NewProvider(tokens cart.TokenSource, guest *GuestStrategy, remote *RemoteStrategy, reconciler *Reconciler, opts ...ProviderOption) *Provider {
	p := &Provider{
		tokens:     tokens,
		guest:      guest,
		remote:     remote,
		reconciler: reconciler,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// strategy observes the token and returns the strategy serving it
func (p *Provider) strategy(ctx context.Context) cart.Strategy {
	if err := p.reconciler.Observe(ctx); err != nil {
		logger.WithLogger(ctx, p.logger).Warn("cart sync failed", zap.Error(err))
	}
	if p.tokens.Token() != "" {
		return p.remote
	}
	return p.guest
}

func (p *Provider) owner() string {
	if key := p.tokens.CacheKey(); key != "" {
		return key
	}
	return guestOwner
}

// CartItems returns the remote cart when signed in and the guest cart
// otherwise. Guest items still waiting for a sync are listed after the
// remote ones. If the remote read fails, those pending guest items are
// returned along with the error.
func (p *Provider) CartItems(ctx context.Context) ([]cart.CartItemView, error) {
	strategy := p.strategy(ctx)
	ctx, span := telemetry.StartSpan(ctx, "cart.list",
		telemetry.WithAttribute(telemetry.SpanAttrSource, strategy.Source()))
	defer span.End()

	items, err := strategy.List(ctx)
	if strategy.Source() == cart.SourceGuest {
		return items, err
	}

	pending, _ := p.guest.List(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		p.fail(ctx, strategy.Source(), cart.OperationList, err)
		if len(pending) > 0 {
			return pending, err
		}
		return nil, err
	}
	return append(items, pending...), nil
}

// AddToCart adds item to the active cart
func (p *Provider) AddToCart(ctx context.Context, item cart.CartLineItem) error {
	strategy := p.strategy(ctx)
	ctx, span := telemetry.StartSpan(ctx, "cart.add",
		telemetry.WithAttribute(telemetry.SpanAttrSource, strategy.Source()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, item.ProductID),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, item.Quantity))
	defer span.End()

	if err := strategy.Add(ctx, item); err != nil {
		telemetry.RecordError(span, err)
		p.fail(ctx, strategy.Source(), cart.OperationAdd, err)
		return err
	}
	p.publish(ctx, cart.NewCartItemAddedEvent(p.owner(), strategy.Source(), item))
	return nil
}

// UpdateCartItemQuantity sets the quantity of item id. Remote ids are server
// ids and guest ids are positions. The quantity is not checked; callers
// treat zero or less as a removal.
func (p *Provider) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) error {
	return p.updateQuantity(ctx, p.strategy(ctx), id, quantity)
}

// DeleteCartItem removes item id from the active cart
func (p *Provider) DeleteCartItem(ctx context.Context, id int64) error {
	return p.deleteItem(ctx, p.strategy(ctx), id)
}

// UpdatePendingItemQuantity sets the quantity of a guest item by position.
// It reaches guest items that CartItems lists as pending while signed in.
// No sync is attempted first so positions stay as listed.
func (p *Provider) UpdatePendingItemQuantity(ctx context.Context, index int64, quantity int) error {
	return p.updateQuantity(ctx, p.guest, index, quantity)
}

// DeletePendingItem removes a guest item by position without a sync attempt
func (p *Provider) DeletePendingItem(ctx context.Context, index int64) error {
	return p.deleteItem(ctx, p.guest, index)
}

func (p *Provider) updateQuantity(ctx context.Context, strategy cart.Strategy, id int64, quantity int) error {
	ctx, span := telemetry.StartSpan(ctx, "cart.update",
		telemetry.WithAttribute(telemetry.SpanAttrSource, strategy.Source()),
		telemetry.WithAttribute(telemetry.SpanAttrItemID, id),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, quantity))
	defer span.End()

	if err := strategy.UpdateQuantity(ctx, id, quantity); err != nil {
		telemetry.RecordError(span, err)
		p.fail(ctx, strategy.Source(), cart.OperationUpdate, err)
		return err
	}
	p.publish(ctx, cart.NewCartItemUpdatedEvent(p.owner(), strategy.Source(), id, quantity))
	return nil
}

func (p *Provider) deleteItem(ctx context.Context, strategy cart.Strategy, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "cart.remove",
		telemetry.WithAttribute(telemetry.SpanAttrSource, strategy.Source()),
		telemetry.WithAttribute(telemetry.SpanAttrItemID, id))
	defer span.End()

	if err := strategy.Remove(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		p.fail(ctx, strategy.Source(), cart.OperationRemove, err)
		return err
	}
	p.publish(ctx, cart.NewCartItemRemovedEvent(p.owner(), strategy.Source(), id))
	return nil
}

// ClearCart empties the active cart. The remote cart is cleared one delete
// per item; failed deletes are joined into the returned error.
func (p *Provider) ClearCart(ctx context.Context) error {
	strategy := p.strategy(ctx)
	ctx, span := telemetry.StartSpan(ctx, "cart.clear",
		telemetry.WithAttribute(telemetry.SpanAttrSource, strategy.Source()))
	defer span.End()

	if err := strategy.Clear(ctx); err != nil {
		telemetry.RecordError(span, err)
		p.fail(ctx, strategy.Source(), cart.OperationClear, err)
		return err
	}
	p.publish(ctx, cart.NewCartClearedEvent(p.owner(), strategy.Source()))
	return nil
}

// Sync runs a reconciliation attempt now and returns its error
func (p *Provider) Sync(ctx context.Context) error {
	return p.reconciler.Observe(ctx)
}

// IsLoading reports whether a remote cart fetch is in flight
func (p *Provider) IsLoading() bool {
	return p.remote.IsLoading()
}

// IsSyncing reports whether the guest cart is being migrated
func (p *Provider) IsSyncing() bool {
	return p.reconciler.IsSyncing()
}

// SyncState returns the reconciler state
func (p *Provider) SyncState() cart.SyncState {
	return p.reconciler.State()
}

func (p *Provider) fail(ctx context.Context, source cart.ItemSource, op cart.Operation, err error) {
	log := logger.WithLogger(ctx, p.logger)
	if errors.Is(err, cart.ErrMissingToken) {
		log.Error("remote cart used without token", zap.String("operation", string(op)))
	} else {
		log.Warn("cart operation failed",
			zap.String("source", source.String()),
			zap.String("operation", string(op)),
			zap.Error(err),
		)
	}
	p.publish(ctx, cart.NewCartMutationFailedEvent(p.owner(), source, op, err))
}

func (p *Provider) publish(ctx context.Context, event shared.DomainEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish cart event", zap.String("event_type", event.EventType()), zap.Error(err))
	}
}
