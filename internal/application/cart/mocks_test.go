package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/infrastructure/storage"
)

var errNetwork = errors.New("network unreachable")

// MockRemoteCart is a mock implementation of cart.RemoteCart
type MockRemoteCart struct {
	mock.Mock
}

func (m *MockRemoteCart) GetCart(ctx context.Context, token string) ([]cart.RemoteCartItem, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.RemoteCartItem), args.Error(1)
}

func (m *MockRemoteCart) AddItems(ctx context.Context, token string, items []cart.CartItemPayload) error {
	args := m.Called(ctx, token, items)
	return args.Error(0)
}

func (m *MockRemoteCart) UpdateQuantity(ctx context.Context, token string, update cart.QuantityUpdate) error {
	args := m.Called(ctx, token, update)
	return args.Error(0)
}

func (m *MockRemoteCart) DeleteItem(ctx context.Context, token string, itemID int64) error {
	args := m.Called(ctx, token, itemID)
	return args.Error(0)
}

// MockProductLookup is a mock implementation of cart.ProductLookup
type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) GetProduct(ctx context.Context, productID int64) (*cart.ProductSnapshot, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.ProductSnapshot), args.Error(1)
}

// fakeTokens is a settable token source
type fakeTokens struct {
	mu    sync.Mutex
	token string
}

func (f *fakeTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) CacheKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return ""
	}
	return "user:" + f.token
}

func (f *fakeTokens) set(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// fakeBackend is an in-memory remote cart keyed by token
type fakeBackend struct {
	mu      sync.Mutex
	nextID  int64
	carts   map[string][]cart.RemoteCartItem
	addErr  error
	getErr  error
	getHits int
	batches [][]cart.CartItemPayload
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 1, carts: make(map[string][]cart.RemoteCartItem)}
}

func (b *fakeBackend) GetCart(_ context.Context, token string) ([]cart.RemoteCartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.getHits++
	if b.getErr != nil {
		return nil, b.getErr
	}
	return append([]cart.RemoteCartItem{}, b.carts[token]...), nil
}

func (b *fakeBackend) AddItems(_ context.Context, token string, items []cart.CartItemPayload) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches = append(b.batches, items)
	if b.addErr != nil {
		return b.addErr
	}
	for _, p := range items {
		b.carts[token] = append(b.carts[token], cart.RemoteCartItem{
			ID:        b.nextID,
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			ColorID:   p.ColorID,
			SizeID:    p.SizeID,
		})
		b.nextID++
	}
	return nil
}

func (b *fakeBackend) UpdateQuantity(_ context.Context, token string, update cart.QuantityUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, item := range b.carts[token] {
		if item.ProductID == update.ProductID && cart.SameVariant(item.SizeID, update.SizeID) && cart.SameVariant(item.ColorID, update.ColorID) {
			b.carts[token][i].Quantity = update.Quantity
			return nil
		}
	}
	return fmt.Errorf("no item for product %d", update.ProductID)
}

func (b *fakeBackend) DeleteItem(_ context.Context, token string, itemID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.carts[token]
	for i, item := range items {
		if item.ID == itemID {
			b.carts[token] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no item %d", itemID)
}

func (b *fakeBackend) batchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.batches)
}

// failingStorage fails writes on demand
type failingStorage struct {
	*storage.MemoryStorage
	setErr    error
	removeErr error
	getErr    error
}

func newFailingStorage() *failingStorage {
	return &failingStorage{MemoryStorage: storage.NewMemoryStorage()}
}

func (s *failingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	return s.MemoryStorage.Get(ctx, key)
}

func (s *failingStorage) Set(ctx context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.MemoryStorage.Set(ctx, key, value)
}

func (s *failingStorage) Remove(ctx context.Context, key string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	return s.MemoryStorage.Remove(ctx, key)
}

func snapshot(id int64, title string) *cart.ProductSnapshot {
	return &cart.ProductSnapshot{ID: id, Title: title, Price: decimal.NewFromInt(10)}
}

func lineItem(productID int64, quantity int) cart.CartLineItem {
	return cart.CartLineItem{
		ProductID: productID,
		Quantity:  quantity,
		Product:   snapshot(productID, fmt.Sprintf("product %d", productID)),
	}
}
