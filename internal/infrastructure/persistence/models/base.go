package models

import "time"

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// All returns every model the sandbox migrates
func All() []any {
	return []any{
		&UserModel{},
		&ProductModel{},
		&CartItemModel{},
	}
}
