// Package cart contains the Cart bounded context of the storefront.
//
// Key concepts:
//   - CartLineItem: a guest cart entry persisted in the local storage slot,
//     carrying a product snapshot so it renders without a network call
//   - RemoteCartItem: an authenticated cart entry owned by the backend
//   - CartItemView: the unified read model handed to the UI
//   - SyncState: the guest-to-remote reconciliation state machine
//   - Strategy: guest and remote implementations of the cart operations
//
// Design Pattern: Ports & Adapters
//   - Ports (Storage, RemoteCart, ProductLookup, RemoteCartCache) are defined here
//   - Adapters live in the infrastructure layer
package cart
