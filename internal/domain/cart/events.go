package cart

import "github.com/marketplace/storefront/internal/domain/shared"

// AggregateTypeCart is the aggregate type for cart events
const AggregateTypeCart = "Cart"

// Event type constants
const (
	EventTypeCartItemAdded      = "CartItemAdded"
	EventTypeCartItemUpdated    = "CartItemUpdated"
	EventTypeCartItemRemoved    = "CartItemRemoved"
	EventTypeCartCleared        = "CartCleared"
	EventTypeCartMutationFailed = "CartMutationFailed"
	EventTypeCartSyncStarted    = "CartSyncStarted"
	EventTypeCartSynced         = "CartSynced"
	EventTypeCartSyncFailed     = "CartSyncFailed"
)

// Operation names a cart mutation
type Operation string

const (
	OperationAdd    Operation = "add"
	OperationUpdate Operation = "update"
	OperationRemove Operation = "remove"
	OperationClear  Operation = "clear"
	OperationList   Operation = "list"
)

// CartItemAddedEvent is raised when an item lands in either cart
type CartItemAddedEvent struct {
	shared.BaseDomainEvent
	Source    ItemSource `json:"source"`
	ProductID int64      `json:"product_id"`
	Quantity  int        `json:"quantity"`
}

// NewCartItemAddedEvent creates a new CartItemAddedEvent
func NewCartItemAddedEvent(owner string, source ItemSource, item CartLineItem) *CartItemAddedEvent {
	return &CartItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartItemAdded, AggregateTypeCart, owner),
		Source:          source,
		ProductID:       item.ProductID,
		Quantity:        item.Quantity,
	}
}

// CartItemUpdatedEvent is raised when an item quantity is rewritten
type CartItemUpdatedEvent struct {
	shared.BaseDomainEvent
	Source   ItemSource `json:"source"`
	ItemID   int64      `json:"item_id"`
	Quantity int        `json:"quantity"`
}

// NewCartItemUpdatedEvent creates a new CartItemUpdatedEvent
func NewCartItemUpdatedEvent(owner string, source ItemSource, itemID int64, quantity int) *CartItemUpdatedEvent {
	return &CartItemUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartItemUpdated, AggregateTypeCart, owner),
		Source:          source,
		ItemID:          itemID,
		Quantity:        quantity,
	}
}

// CartItemRemovedEvent is raised when an item is deleted
type CartItemRemovedEvent struct {
	shared.BaseDomainEvent
	Source ItemSource `json:"source"`
	ItemID int64      `json:"item_id"`
}

// NewCartItemRemovedEvent creates a new CartItemRemovedEvent
func NewCartItemRemovedEvent(owner string, source ItemSource, itemID int64) *CartItemRemovedEvent {
	return &CartItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartItemRemoved, AggregateTypeCart, owner),
		Source:          source,
		ItemID:          itemID,
	}
}

// CartClearedEvent is raised when a cart is emptied
type CartClearedEvent struct {
	shared.BaseDomainEvent
	Source ItemSource `json:"source"`
}

// NewCartClearedEvent creates a new CartClearedEvent
func NewCartClearedEvent(owner string, source ItemSource) *CartClearedEvent {
	return &CartClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartCleared, AggregateTypeCart, owner),
		Source:          source,
	}
}

// CartMutationFailedEvent is raised when a cart operation fails
type CartMutationFailedEvent struct {
	shared.BaseDomainEvent
	Source    ItemSource `json:"source"`
	Operation Operation  `json:"operation"`
	Reason    string     `json:"reason"`
}

// NewCartMutationFailedEvent creates a new CartMutationFailedEvent
func NewCartMutationFailedEvent(owner string, source ItemSource, op Operation, err error) *CartMutationFailedEvent {
	return &CartMutationFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartMutationFailed, AggregateTypeCart, owner),
		Source:          source,
		Operation:       op,
		Reason:          err.Error(),
	}
}

// CartSyncStartedEvent is raised when guest items start migrating
type CartSyncStartedEvent struct {
	shared.BaseDomainEvent
	ItemCount int `json:"item_count"`
}

// NewCartSyncStartedEvent creates a new CartSyncStartedEvent
func NewCartSyncStartedEvent(owner string, itemCount int) *CartSyncStartedEvent {
	return &CartSyncStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartSyncStarted, AggregateTypeCart, owner),
		ItemCount:       itemCount,
	}
}

// CartSyncedEvent is raised when the guest cart was migrated and cleared
type CartSyncedEvent struct {
	shared.BaseDomainEvent
	ItemCount int `json:"item_count"`
}

// NewCartSyncedEvent creates a new CartSyncedEvent
func NewCartSyncedEvent(owner string, itemCount int) *CartSyncedEvent {
	return &CartSyncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartSynced, AggregateTypeCart, owner),
		ItemCount:       itemCount,
	}
}

// CartSyncFailedEvent is raised when the migration batch was rejected.
// The guest cart is left untouched.
type CartSyncFailedEvent struct {
	shared.BaseDomainEvent
	ItemCount int    `json:"item_count"`
	Reason    string `json:"reason"`
}

// NewCartSyncFailedEvent creates a new CartSyncFailedEvent
func NewCartSyncFailedEvent(owner string, itemCount int, err error) *CartSyncFailedEvent {
	return &CartSyncFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartSyncFailed, AggregateTypeCart, owner),
		ItemCount:       itemCount,
		Reason:          err.Error(),
	}
}
