package models

import (
	"time"

	"github.com/marketplace/storefront/internal/domain/identity"
)

// UserModel is the persistence model for sandbox users
type UserModel struct {
	BaseModel
	Username     string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	DisplayName  string     `gorm:"type:varchar(100)"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:           m.ID,
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		PasswordHash: m.PasswordHash,
		LastLoginAt:  m.LastLoginAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.ID = u.ID
	m.Username = u.Username
	m.DisplayName = u.DisplayName
	m.PasswordHash = u.PasswordHash
	m.LastLoginAt = u.LastLoginAt
	m.CreatedAt = u.CreatedAt
	m.UpdatedAt = u.UpdatedAt
}
