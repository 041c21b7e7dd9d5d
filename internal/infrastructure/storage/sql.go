package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// SlotModel is the GORM model backing SQLStorage
type SlotModel struct {
	Key       string `gorm:"column:slot_key;type:varchar(255);primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (SlotModel) TableName() string {
	return "storage_slots"
}

// SQLStorage keeps the storage slot in a key/value table
type SQLStorage struct {
	db *gorm.DB
}

// NewSQLStorage creates a SQL-backed storage slot and migrates its table
func NewSQLStorage(db *gorm.DB) (*SQLStorage, error) {
	if err := db.AutoMigrate(&SlotModel{}); err != nil {
		return nil, fmt.Errorf("storage: migrate slot table: %w", err)
	}
	return &SQLStorage{db: db}, nil
}

// Get returns the value stored under key
func (s *SQLStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var model SlotModel
	err := s.db.WithContext(ctx).Where("slot_key = ?", key).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: sql get %q: %w", key, err)
	}
	return model.Value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *SQLStorage) Set(ctx context.Context, key, value string) error {
	model := SlotModel{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("storage: sql set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (s *SQLStorage) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&SlotModel{}).Error; err != nil {
		return fmt.Errorf("storage: sql delete %q: %w", key, err)
	}
	return nil
}

var _ cart.Storage = (*SQLStorage)(nil)
