package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/domain/shared"
)

// NoticeStorageKey is the storage slot key holding recorded notices
const NoticeStorageKey = "notices"

// DefaultNoticeLimit is how many notices are kept
const DefaultNoticeLimit = 50

// NoticeLevel tells success notices from failures
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible message about a cart operation
type Notice struct {
	ID        uuid.UUID   `json:"id"`
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	EventType string      `json:"event_type"`
	Reason    string      `json:"reason,omitempty"`
	At        time.Time   `json:"at"`
}

// NoticeRecorder turns cart events into notices, keeping the newest ones.
// With a storage slot the list survives restarts.
type NoticeRecorder struct {
	storage cart.Storage
	limit   int
	logger  *zap.Logger

	mu      sync.Mutex
	notices []Notice
}

// NoticeOption configures a NoticeRecorder
type NoticeOption func(*NoticeRecorder)

// WithNoticeStorage persists notices in storage
func WithNoticeStorage(storage cart.Storage) NoticeOption {
	return func(n *NoticeRecorder) {
		n.storage = storage
	}
}

// WithNoticeLimit sets how many notices are kept
func WithNoticeLimit(limit int) NoticeOption {
	return func(n *NoticeRecorder) {
		if limit > 0 {
			n.limit = limit
		}
	}
}

// WithNoticeLogger sets the recorder logger
func WithNoticeLogger(logger *zap.Logger) NoticeOption {
	return func(n *NoticeRecorder) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNoticeRecorder creates a recorder, loading stored notices if any
func NewNoticeRecorder(ctx context.Context, opts ...NoticeOption) *NoticeRecorder {
	n := &NoticeRecorder{
		limit:  DefaultNoticeLimit,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.storage != nil {
		n.notices = n.load(ctx)
	}
	return n
}

func (n *NoticeRecorder) load(ctx context.Context) []Notice {
	raw, ok, err := n.storage.Get(ctx, NoticeStorageKey)
	if err != nil || !ok {
		return nil
	}
	var notices []Notice
	if err := json.Unmarshal([]byte(raw), &notices); err != nil {
		n.logger.Warn("discarding malformed notices", zap.Error(err))
		return nil
	}
	if len(notices) > n.limit {
		notices = notices[len(notices)-n.limit:]
	}
	return notices
}

// EventTypes returns the cart events that produce notices
func (n *NoticeRecorder) EventTypes() []string {
	return []string{
		cart.EventTypeCartItemAdded,
		cart.EventTypeCartItemUpdated,
		cart.EventTypeCartItemRemoved,
		cart.EventTypeCartCleared,
		cart.EventTypeCartMutationFailed,
		cart.EventTypeCartSynced,
		cart.EventTypeCartSyncFailed,
	}
}

// Handle records a notice for event
func (n *NoticeRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	notice, ok := noticeFor(event)
	if !ok {
		return nil
	}
	notice.ID = event.EventID()
	notice.EventType = event.EventType()
	notice.At = event.OccurredAt()
	n.record(ctx, notice)
	return nil
}

func noticeFor(event shared.DomainEvent) (Notice, bool) {
	switch e := event.(type) {
	case *cart.CartItemAddedEvent:
		return Notice{Level: NoticeSuccess, Message: "item added to cart"}, true
	case *cart.CartItemUpdatedEvent:
		return Notice{Level: NoticeSuccess, Message: "cart updated"}, true
	case *cart.CartItemRemovedEvent:
		return Notice{Level: NoticeSuccess, Message: "item removed from cart"}, true
	case *cart.CartClearedEvent:
		return Notice{Level: NoticeSuccess, Message: "cart cleared"}, true
	case *cart.CartSyncedEvent:
		return Notice{Level: NoticeSuccess, Message: "cart synced"}, true
	case *cart.CartSyncFailedEvent:
		return Notice{Level: NoticeError, Message: "cart sync failed, items saved locally", Reason: e.Reason}, true
	case *cart.CartMutationFailedEvent:
		return Notice{Level: NoticeError, Message: failureMessage(e.Operation), Reason: e.Reason}, true
	default:
		return Notice{}, false
	}
}

func failureMessage(op cart.Operation) string {
	switch op {
	case cart.OperationAdd:
		return "failed to add item"
	case cart.OperationUpdate:
		return "failed to update item"
	case cart.OperationRemove:
		return "failed to remove item"
	case cart.OperationClear:
		return "failed to clear cart"
	case cart.OperationList:
		return "failed to load cart"
	default:
		return "cart operation failed"
	}
}

func (n *NoticeRecorder) record(ctx context.Context, notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notices = append(n.notices, notice)
	if len(n.notices) > n.limit {
		n.notices = append([]Notice(nil), n.notices[len(n.notices)-n.limit:]...)
	}
	n.persist(ctx)
}

// persist writes the notices through. Must hold n.mu.
func (n *NoticeRecorder) persist(ctx context.Context) {
	if n.storage == nil {
		return
	}
	if len(n.notices) == 0 {
		if err := n.storage.Remove(ctx, NoticeStorageKey); err != nil {
			n.logger.Warn("failed to remove notices", zap.Error(err))
		}
		return
	}
	raw, err := json.Marshal(n.notices)
	if err != nil {
		n.logger.Warn("failed to encode notices", zap.Error(err))
		return
	}
	if err := n.storage.Set(ctx, NoticeStorageKey, string(raw)); err != nil {
		n.logger.Warn("failed to persist notices", zap.Error(err))
	}
}

// Notices returns the recorded notices, oldest first
func (n *NoticeRecorder) Notices() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}

// Errors returns only the failure notices
func (n *NoticeRecorder) Errors() []Notice {
	var out []Notice
	for _, notice := range n.Notices() {
		if notice.Level == NoticeError {
			out = append(out, notice)
		}
	}
	return out
}

// Clear drops all notices
func (n *NoticeRecorder) Clear(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = nil
	n.persist(ctx)
}

var _ shared.EventHandler = (*NoticeRecorder)(nil)
