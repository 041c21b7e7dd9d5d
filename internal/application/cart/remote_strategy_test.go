package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/infrastructure/cache"
)

func newCachedRemote(t *testing.T, client cart.RemoteCart, tokens cart.TokenSource) (*RemoteStrategy, *cache.InMemoryCartCache) {
	t.Helper()
	c := cache.NewInMemoryCartCache()
	t.Cleanup(func() { _ = c.Close() })
	return NewRemoteStrategy(client, tokens, WithCartCache(c, time.Minute)), c
}

func TestRemoteStrategy_ListUsesCache(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	require.NoError(t, backend.AddItems(ctx, "tok", []cart.CartItemPayload{{ProductID: 101, Quantity: 1}}))

	remote, _ := newCachedRemote(t, backend, &fakeTokens{token: "tok"})

	for i := 0; i < 3; i++ {
		views, err := remote.List(ctx)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, cart.SourceRemote, views[0].Source)
	}
	assert.Equal(t, 1, backend.getHits)
}

func TestRemoteStrategy_MutationsInvalidateCache(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	remote, c := newCachedRemote(t, backend, &fakeTokens{token: "tok"})

	_, err := remote.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Size())

	require.NoError(t, remote.Add(ctx, lineItem(101, 2)))
	assert.Equal(t, 0, c.Size())

	views, err := remote.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].Quantity)
	assert.Equal(t, 2, backend.getHits)
}

func TestRemoteStrategy_UpdateQuantityResolvesVariant(t *testing.T) {
	ctx := context.Background()
	sizeID := int64(4)
	remote := new(MockRemoteCart)
	remote.On("GetCart", mock.Anything, "tok").Return([]cart.RemoteCartItem{
		{ID: 9, ProductID: 101, Quantity: 1, SizeID: &sizeID},
	}, nil)
	remote.On("UpdateQuantity", mock.Anything, "tok", mock.MatchedBy(func(u cart.QuantityUpdate) bool {
		return u.ProductID == 101 && u.SizeID != nil && *u.SizeID == sizeID && u.ColorID == nil && u.Quantity == 5
	})).Return(nil).Once()

	strategy := NewRemoteStrategy(remote, &fakeTokens{token: "tok"})
	require.NoError(t, strategy.UpdateQuantity(ctx, 9, 5))

	assert.ErrorIs(t, strategy.UpdateQuantity(ctx, 77, 1), cart.ErrCartItemNotFound)
	remote.AssertExpectations(t)
}

func TestRemoteStrategy_UpdateQuantityIsNotClamped(t *testing.T) {
	ctx := context.Background()
	for _, qty := range []int{0, -3} {
		remote := new(MockRemoteCart)
		remote.On("GetCart", mock.Anything, "tok").Return([]cart.RemoteCartItem{{ID: 1, ProductID: 101, Quantity: 2}}, nil)
		remote.On("UpdateQuantity", mock.Anything, "tok", cart.QuantityUpdate{ProductID: 101, Quantity: qty}).Return(nil).Once()

		strategy := NewRemoteStrategy(remote, &fakeTokens{token: "tok"})
		require.NoError(t, strategy.UpdateQuantity(ctx, 1, qty))
		remote.AssertExpectations(t)
	}
}

func TestRemoteStrategy_ClearDeletesEachItemAndJoinsErrors(t *testing.T) {
	ctx := context.Background()
	remote := new(MockRemoteCart)
	remote.On("GetCart", mock.Anything, "tok").Return([]cart.RemoteCartItem{
		{ID: 1, ProductID: 101}, {ID: 2, ProductID: 202}, {ID: 3, ProductID: 303},
	}, nil)
	remote.On("DeleteItem", mock.Anything, "tok", int64(1)).Return(nil).Once()
	remote.On("DeleteItem", mock.Anything, "tok", int64(2)).Return(errNetwork).Once()
	remote.On("DeleteItem", mock.Anything, "tok", int64(3)).Return(nil).Once()

	err := NewRemoteStrategy(remote, &fakeTokens{token: "tok"}).Clear(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, errNetwork)
	assert.Contains(t, err.Error(), "delete item 2")
	remote.AssertNumberOfCalls(t, "DeleteItem", 3)
}

func TestRemoteStrategy_MissingToken(t *testing.T) {
	ctx := context.Background()
	remote := new(MockRemoteCart)
	strategy := NewRemoteStrategy(remote, &fakeTokens{})

	_, err := strategy.List(ctx)
	assert.ErrorIs(t, err, cart.ErrMissingToken)
	assert.ErrorIs(t, strategy.Add(ctx, lineItem(1, 1)), cart.ErrMissingToken)
	assert.ErrorIs(t, strategy.Remove(ctx, 1), cart.ErrMissingToken)
	assert.ErrorIs(t, strategy.Clear(ctx), cart.ErrMissingToken)
	remote.AssertNotCalled(t, "GetCart", mock.Anything, mock.Anything)
}

func TestRemoteStrategy_IsLoading(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	remote := new(MockRemoteCart)
	remote.On("GetCart", mock.Anything, "tok").
		Run(func(mock.Arguments) { <-release }).
		Return([]cart.RemoteCartItem{}, nil)

	strategy := NewRemoteStrategy(remote, &fakeTokens{token: "tok"})
	assert.False(t, strategy.IsLoading())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = strategy.List(ctx)
	}()

	require.Eventually(t, strategy.IsLoading, time.Second, 5*time.Millisecond)
	close(release)
	<-done
	assert.False(t, strategy.IsLoading())
}
