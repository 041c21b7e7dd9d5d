package cart

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/domain/shared"
	"github.com/marketplace/storefront/internal/infrastructure/telemetry"
)

// cacheInvalidator drops the cached remote cart read of the current user
type cacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Reconciler migrates the guest cart to the remote cart once per token.
//
//	idle --(token, local non-empty)--> syncing --ok--> done
//	                                       \--err--> idle (retried on next observation)
//	done --(token cleared or changed)--> idle
type Reconciler struct {
	store     *LocalStore
	client    cart.RemoteCart
	tokens    cart.TokenSource
	cache     cacheInvalidator
	publisher shared.EventPublisher
	logger    *zap.Logger

	mu        sync.Mutex
	state     cart.SyncState
	lastToken string
	fired     bool
}

// ReconcilerOption configures a Reconciler
type ReconcilerOption func(*Reconciler)

// WithReconcilerLogger sets the reconciler logger
func WithReconcilerLogger(logger *zap.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReconcilerPublisher sets the publisher for sync events
func WithReconcilerPublisher(publisher shared.EventPublisher) ReconcilerOption {
	return func(r *Reconciler) {
		r.publisher = publisher
	}
}

// WithCacheInvalidator sets what is invalidated after a successful sync
func WithCacheInvalidator(cache cacheInvalidator) ReconcilerOption {
	return func(r *Reconciler) {
		r.cache = cache
	}
}

// NewReconciler creates a reconciler in the idle state
func NewReconciler(store *LocalStore, client cart.RemoteCart, tokens cart.TokenSource, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		store:  store,
		client: client,
		tokens: tokens,
		logger: zap.NewNop(),
		state:  cart.SyncStateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current sync state
func (r *Reconciler) State() cart.SyncState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// IsSyncing reports whether a migration batch is in flight
func (r *Reconciler) IsSyncing() bool {
	return r.State() == cart.SyncStateSyncing
}

// Observe looks at the current token and starts a migration when one is
// due. It returns the batch error of a failed migration and nil otherwise.
func (r *Reconciler) Observe(ctx context.Context) error {
	return r.observe(ctx, r.tokens.Token())
}

// OnTokenChange lets the reconciler follow session token changes
func (r *Reconciler) OnTokenChange(ctx context.Context, token string) {
	if err := r.observe(ctx, token); err != nil {
		r.logger.Warn("cart sync after token change failed", zap.Error(err))
	}
}

func (r *Reconciler) observe(ctx context.Context, token string) error {
	items, ok := r.begin(token)
	if !ok {
		return nil
	}
	return r.sync(ctx, token, items)
}

// begin decides whether to sync and moves idle -> syncing when it does
func (r *Reconciler) begin(token string) ([]cart.CartLineItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token != r.lastToken {
		r.lastToken = token
		r.fired = false
		if r.state == cart.SyncStateDone {
			r.transition(cart.SyncStateIdle)
		}
	}
	if token == "" || r.fired || r.state != cart.SyncStateIdle {
		return nil, false
	}

	items := r.store.Items()
	if len(items) == 0 {
		return nil, false
	}
	r.transition(cart.SyncStateSyncing)
	return items, true
}

func (r *Reconciler) sync(ctx context.Context, token string, items []cart.CartLineItem) error {
	ctx, span := telemetry.StartSpan(ctx, "cart.sync",
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(items)))
	defer span.End()

	owner := r.tokens.CacheKey()
	r.publish(ctx, cart.NewCartSyncStartedEvent(owner, len(items)))

	var err error
	if orderable := cart.Orderable(items); len(orderable) > 0 {
		err = r.client.AddItems(ctx, token, cart.Payloads(orderable))
	}
	if err != nil {
		telemetry.RecordError(span, err)
		r.finish(token, false)
		r.logger.Warn("cart sync failed, items kept locally",
			zap.Int("item_count", len(items)),
			zap.Error(err),
		)
		r.publish(ctx, cart.NewCartSyncFailedEvent(owner, len(items), err))
		return fmt.Errorf("sync guest cart: %w", err)
	}

	if err := r.store.RemoveSynced(ctx, items); err != nil {
		// The latch is still set so the items are not submitted twice.
		r.logger.Error("failed to remove synced items from guest cart", zap.Error(err))
	}
	if r.cache != nil {
		r.cache.Invalidate(ctx)
	}
	r.finish(token, true)
	r.logger.Info("guest cart synced", zap.Int("item_count", len(items)))
	r.publish(ctx, cart.NewCartSyncedEvent(owner, len(items)))
	return nil
}

// finish moves syncing -> done or idle. A token change during the batch
// leaves the latch unset for the new token.
func (r *Reconciler) finish(token string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ok && token == r.lastToken {
		r.transition(cart.SyncStateDone)
		r.fired = true
		return
	}
	r.transition(cart.SyncStateIdle)
}

// transition applies next. Must hold r.mu.
func (r *Reconciler) transition(next cart.SyncState) {
	state, err := r.state.TransitionTo(next)
	if err != nil {
		r.logger.Error("rejected sync transition", zap.Error(err))
		return
	}
	r.state = state
}

func (r *Reconciler) publish(ctx context.Context, event shared.DomainEvent) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("failed to publish cart event", zap.String("event_type", event.EventType()), zap.Error(err))
	}
}
