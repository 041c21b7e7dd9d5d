package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/domain/shared"
	"github.com/marketplace/storefront/internal/infrastructure/event"
	"github.com/marketplace/storefront/internal/infrastructure/storage"
)

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

type eventLog struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (l *eventLog) Publish(_ context.Context, events ...shared.DomainEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return nil
}

func (l *eventLog) types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, e := range l.events {
		out[i] = e.EventType()
	}
	return out
}

type reconcilerFixture struct {
	store   *LocalStore
	backend *fakeBackend
	tokens  *fakeTokens
	cache   *countingInvalidator
	events  *eventLog
	rec     *Reconciler
}

func newReconcilerFixture(t *testing.T, guestItems ...cart.CartLineItem) *reconcilerFixture {
	t.Helper()
	ctx := context.Background()
	f := &reconcilerFixture{
		store:   NewLocalStore(storage.NewMemoryStorage()).Open(ctx),
		backend: newFakeBackend(),
		tokens:  &fakeTokens{},
		cache:   &countingInvalidator{},
		events:  &eventLog{},
	}
	for _, item := range guestItems {
		require.NoError(t, f.store.Add(ctx, item))
	}
	f.rec = NewReconciler(f.store, f.backend, f.tokens,
		WithCacheInvalidator(f.cache),
		WithReconcilerPublisher(f.events),
		WithReconcilerLogger(zaptest.NewLogger(t)),
	)
	return f
}

func TestReconciler_NoTokenIsNoop(t *testing.T) {
	f := newReconcilerFixture(t, lineItem(1, 1))

	require.NoError(t, f.rec.Observe(context.Background()))

	assert.Equal(t, cart.SyncStateIdle, f.rec.State())
	assert.Equal(t, 0, f.backend.batchCount())
	assert.Equal(t, 1, f.store.Len())
}

func TestReconciler_EmptyLocalCartIsNoop(t *testing.T) {
	f := newReconcilerFixture(t)
	f.tokens.set("tok")

	require.NoError(t, f.rec.Observe(context.Background()))

	assert.Equal(t, cart.SyncStateIdle, f.rec.State())
	assert.Equal(t, 0, f.backend.batchCount())
	assert.Empty(t, f.events.types())
}

func TestReconciler_SyncSuccess(t *testing.T) {
	colorID := int64(3)
	withColor := lineItem(202, 2)
	withColor.ColorID = &colorID
	f := newReconcilerFixture(t, lineItem(101, 1), withColor)
	f.tokens.set("tok")

	require.NoError(t, f.rec.Observe(context.Background()))

	assert.Equal(t, cart.SyncStateDone, f.rec.State())
	assert.True(t, f.store.IsEmpty())
	assert.Equal(t, 1, f.cache.calls)
	assert.Equal(t, []string{cart.EventTypeCartSyncStarted, cart.EventTypeCartSynced}, f.events.types())

	require.Len(t, f.backend.batches, 1)
	batch := f.backend.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, cart.CartItemPayload{ProductID: 101, Quantity: 1}, batch[0])
	assert.Equal(t, int64(202), batch[1].ProductID)
	require.NotNil(t, batch[1].ColorID)
	assert.Equal(t, colorID, *batch[1].ColorID)
}

func TestReconciler_FiresOncePerToken(t *testing.T) {
	ctx := context.Background()
	f := newReconcilerFixture(t, lineItem(101, 1))
	f.tokens.set("tok")

	require.NoError(t, f.rec.Observe(ctx))
	require.NoError(t, f.store.Add(ctx, lineItem(303, 1)))
	require.NoError(t, f.rec.Observe(ctx))
	require.NoError(t, f.rec.Observe(ctx))

	assert.Equal(t, 1, f.backend.batchCount())
	assert.Equal(t, cart.SyncStateDone, f.rec.State())

	// a new token re-arms the latch
	f.tokens.set("tok-2")
	require.NoError(t, f.rec.Observe(ctx))
	assert.Equal(t, 2, f.backend.batchCount())
	assert.True(t, f.store.IsEmpty())
}

func TestReconciler_SignOutResetsLatch(t *testing.T) {
	ctx := context.Background()
	f := newReconcilerFixture(t, lineItem(101, 1))
	f.tokens.set("tok")
	require.NoError(t, f.rec.Observe(ctx))
	require.Equal(t, cart.SyncStateDone, f.rec.State())

	f.tokens.set("")
	require.NoError(t, f.rec.Observe(ctx))
	assert.Equal(t, cart.SyncStateIdle, f.rec.State())

	require.NoError(t, f.store.Add(ctx, lineItem(404, 1)))
	f.tokens.set("tok")
	require.NoError(t, f.rec.Observe(ctx))
	assert.Equal(t, 2, f.backend.batchCount())
}

func TestReconciler_FailureKeepsItemsAndRetries(t *testing.T) {
	ctx := context.Background()
	f := newReconcilerFixture(t, lineItem(101, 1))
	f.backend.addErr = errNetwork
	f.tokens.set("tok")

	err := f.rec.Observe(ctx)
	require.ErrorIs(t, err, errNetwork)

	assert.Equal(t, cart.SyncStateIdle, f.rec.State())
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, 0, f.cache.calls)
	assert.Equal(t, []string{cart.EventTypeCartSyncStarted, cart.EventTypeCartSyncFailed}, f.events.types())

	f.backend.addErr = nil
	require.NoError(t, f.rec.Observe(ctx))
	assert.Equal(t, cart.SyncStateDone, f.rec.State())
	assert.True(t, f.store.IsEmpty())
	assert.Equal(t, 2, f.backend.batchCount())
}

func TestReconciler_ConcurrentObserveSubmitsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(storage.NewMemoryStorage()).Open(ctx)
	require.NoError(t, store.Add(ctx, lineItem(101, 1)))
	tokens := &fakeTokens{token: "tok"}

	release := make(chan struct{})
	remote := new(MockRemoteCart)
	remote.On("AddItems", mock.Anything, "tok", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil).Once()

	rec := NewReconciler(store, remote, tokens)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, rec.Observe(ctx))
	}()

	require.Eventually(t, rec.IsSyncing, time.Second, 5*time.Millisecond)
	for i := 0; i < 5; i++ {
		assert.NoError(t, rec.Observe(ctx))
	}
	close(release)
	wg.Wait()

	assert.Equal(t, cart.SyncStateDone, rec.State())
	remote.AssertNumberOfCalls(t, "AddItems", 1)
}

func TestReconciler_OnTokenChange(t *testing.T) {
	f := newReconcilerFixture(t, lineItem(101, 1))
	f.tokens.set("tok")

	f.rec.OnTokenChange(context.Background(), "tok")

	assert.Equal(t, cart.SyncStateDone, f.rec.State())
	assert.True(t, f.store.IsEmpty())
}

func TestReconciler_PublishesThroughEventBus(t *testing.T) {
	ctx := context.Background()
	bus := event.NewInMemoryEventBus(zaptest.NewLogger(t))
	notices := NewNoticeRecorder(ctx)
	bus.Subscribe(notices)

	store := NewLocalStore(storage.NewMemoryStorage()).Open(ctx)
	require.NoError(t, store.Add(ctx, lineItem(101, 1)))
	backend := newFakeBackend()
	backend.addErr = errNetwork

	rec := NewReconciler(store, backend, &fakeTokens{token: "tok"}, WithReconcilerPublisher(bus))
	require.Error(t, rec.Observe(ctx))

	errs := notices.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "cart sync failed, items saved locally", errs[0].Message)
	assert.Contains(t, errs[0].Reason, errNetwork.Error())
}

func TestReconciler_KeepsItemsAddedDuringSync(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(storage.NewMemoryStorage()).Open(ctx)
	require.NoError(t, store.Add(ctx, lineItem(101, 1)))
	tokens := &fakeTokens{token: "tok"}

	release := make(chan struct{})
	remote := new(MockRemoteCart)
	remote.On("AddItems", mock.Anything, "tok", []cart.CartItemPayload{{ProductID: 101, Quantity: 1}}).
		Run(func(mock.Arguments) { <-release }).
		Return(nil).Once()

	rec := NewReconciler(store, remote, tokens)

	done := make(chan error, 1)
	go func() { done <- rec.Observe(ctx) }()
	require.Eventually(t, rec.IsSyncing, time.Second, 5*time.Millisecond)

	// signed out and shopping as a guest while the batch is in flight
	tokens.set("")
	require.NoError(t, store.Add(ctx, lineItem(202, 1)))
	close(release)
	require.NoError(t, <-done)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(202), items[0].ProductID)
	remote.AssertExpectations(t)
}

func TestReconciler_SkipsNonPositiveQuantities(t *testing.T) {
	ctx := context.Background()

	t.Run("submits only positive lines", func(t *testing.T) {
		f := newReconcilerFixture(t, lineItem(101, 2), lineItem(202, 1))
		require.NoError(t, f.store.UpdateQuantity(ctx, 1, 0))
		f.tokens.set("tok")

		require.NoError(t, f.rec.Observe(ctx))

		require.Len(t, f.backend.batches, 1)
		assert.Equal(t, []cart.CartItemPayload{{ProductID: 101, Quantity: 2}}, f.backend.batches[0])
		assert.Equal(t, cart.SyncStateDone, f.rec.State())
		assert.True(t, f.store.IsEmpty())
	})

	t.Run("nothing orderable sends no request", func(t *testing.T) {
		f := newReconcilerFixture(t, lineItem(101, 1))
		require.NoError(t, f.store.UpdateQuantity(ctx, 0, -3))
		f.tokens.set("tok")

		require.NoError(t, f.rec.Observe(ctx))

		assert.Equal(t, 0, f.backend.batchCount())
		assert.Equal(t, cart.SyncStateDone, f.rec.State())
		assert.True(t, f.store.IsEmpty())
	})
}
