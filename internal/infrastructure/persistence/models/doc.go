// Package models contains GORM-specific persistence models for the sandbox
// backend. Domain types stay free of GORM tags; each model converts to and
// from its domain type.
//
// - base.go: BaseModel and the migration list
// - identity.go: users
// - catalog.go: products
// - cart.go: backend cart lines
package models
