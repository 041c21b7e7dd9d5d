package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// LocalCartKey is the storage slot key holding the guest cart
const LocalCartKey = "cart"

var errNotAList = errors.New("guest cart is not a list")

// LocalStore is the guest cart kept in the local storage slot.
// Every mutation writes the whole list through to storage; when the write
// fails the in-memory list is left as it was.
type LocalStore struct {
	storage  cart.Storage
	products cart.ProductLookup
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	items []cart.CartLineItem
}

// LocalStoreOption configures a LocalStore
type LocalStoreOption func(*LocalStore)

// WithProductLookup sets the lookup used when an added item has no snapshot
func WithProductLookup(products cart.ProductLookup) LocalStoreOption {
	return func(s *LocalStore) {
		s.products = products
	}
}

// WithStoreLogger sets the store logger
func WithStoreLogger(logger *zap.Logger) LocalStoreOption {
	return func(s *LocalStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreClock sets the clock used to stamp added_at
func WithStoreClock(now func() time.Time) LocalStoreOption {
	return func(s *LocalStore) {
		s.now = now
	}
}

// NewLocalStore creates a store over storage. Call Open to read the
// persisted cart.
func NewLocalStore(storage cart.Storage, opts ...LocalStoreOption) *LocalStore {
	s := &LocalStore{
		storage: storage,
		logger:  zap.NewNop(),
		now:     time.Now,
		items:   []cart.CartLineItem{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open reads the persisted cart once
func (s *LocalStore) Open(ctx context.Context) *LocalStore {
	s.Load(ctx)
	return s
}

// Load re-reads the cart from storage and returns a copy of it.
// A missing key yields an empty cart. Malformed data yields an empty cart
// and the key is removed. A storage read error yields an empty cart and
// leaves the key alone.
func (s *LocalStore) Load(ctx context.Context) []cart.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = s.read(ctx)
	return cloneItems(s.items)
}

func (s *LocalStore) read(ctx context.Context) []cart.CartLineItem {
	raw, ok, err := s.storage.Get(ctx, LocalCartKey)
	if err != nil {
		s.logger.Warn("failed to read guest cart", zap.Error(err))
		return []cart.CartLineItem{}
	}
	if !ok {
		return []cart.CartLineItem{}
	}

	items, err := decodeItems(raw)
	if err != nil {
		s.logger.Warn("discarding malformed guest cart", zap.Error(err))
		if rmErr := s.storage.Remove(ctx, LocalCartKey); rmErr != nil {
			s.logger.Warn("failed to remove malformed guest cart", zap.Error(rmErr))
		}
		return []cart.CartLineItem{}
	}
	return items
}

// decodeItems accepts only a JSON list of line items
func decodeItems(raw string) ([]cart.CartLineItem, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotAList
	}
	var items []cart.CartLineItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []cart.CartLineItem{}
	}
	return items, nil
}

// Items returns a copy of the cart in insertion order
func (s *LocalStore) Items() []cart.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Len returns the number of line items
func (s *LocalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// IsEmpty reports whether the cart has no items
func (s *LocalStore) IsEmpty() bool {
	return s.Len() == 0
}

// Add appends item. Items are never merged, so adding the same product
// twice yields two entries. A missing product snapshot is resolved through
// the product lookup; if that fails the add fails with
// cart.ErrProductInfoUnavailable and nothing changes.
func (s *LocalStore) Add(ctx context.Context, item cart.CartLineItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item = item.Clone()

	if item.Product == nil {
		product, err := s.lookup(ctx, item.ProductID)
		if err != nil {
			return err
		}
		item.Product = product
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(cloneItems(s.items), item)
	return s.commit(ctx, next)
}

func (s *LocalStore) lookup(ctx context.Context, productID int64) (*cart.ProductSnapshot, error) {
	if s.products == nil {
		return nil, fmt.Errorf("%w: product %d", cart.ErrProductInfoUnavailable, productID)
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		s.logger.Warn("product lookup failed", zap.Int64("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("%w: product %d: %v", cart.ErrProductInfoUnavailable, productID, err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %d", cart.ErrProductInfoUnavailable, productID)
	}
	return product.Clone(), nil
}

// UpdateQuantity rewrites the quantity at index. The quantity is stored
// as given.
func (s *LocalStore) UpdateQuantity(ctx context.Context, index int, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: index %d", cart.ErrLineItemNotFound, index)
	}
	next := cloneItems(s.items)
	next[index].Quantity = quantity
	return s.commit(ctx, next)
}

// Remove deletes the item at index
func (s *LocalStore) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: index %d", cart.ErrLineItemNotFound, index)
	}
	next := make([]cart.CartLineItem, 0, len(s.items)-1)
	next = append(next, cloneItems(s.items[:index])...)
	next = append(next, cloneItems(s.items[index+1:])...)
	return s.commit(ctx, next)
}

// Clear empties the cart and removes the storage key
func (s *LocalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Remove(ctx, LocalCartKey); err != nil {
		return fmt.Errorf("clear guest cart: %w", err)
	}
	s.items = []cart.CartLineItem{}
	return nil
}

// RemoveSynced drops the lines of snapshot that are still stored. Lines
// added or edited after the snapshot was taken stay in the cart. The
// storage key is removed once nothing is left.
func (s *LocalStore) RemoveSynced(ctx context.Context, snapshot []cart.CartLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := make([]bool, len(snapshot))
	next := make([]cart.CartLineItem, 0, len(s.items))
	for _, item := range s.items {
		matched := false
		for i, synced := range snapshot {
			if !used[i] && cart.SameLine(item, synced) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			next = append(next, item.Clone())
		}
	}
	if len(next) == len(s.items) {
		return nil
	}
	if len(next) > 0 {
		return s.commit(ctx, next)
	}
	if err := s.storage.Remove(ctx, LocalCartKey); err != nil {
		return fmt.Errorf("clear guest cart: %w", err)
	}
	s.items = []cart.CartLineItem{}
	return nil
}

// commit persists next and swaps it in. Must hold s.mu.
func (s *LocalStore) commit(ctx context.Context, next []cart.CartLineItem) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	if err := s.storage.Set(ctx, LocalCartKey, string(raw)); err != nil {
		return fmt.Errorf("persist guest cart: %w", err)
	}
	s.items = next
	return nil
}

func cloneItems(items []cart.CartLineItem) []cart.CartLineItem {
	out := make([]cart.CartLineItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
