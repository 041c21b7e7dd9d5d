package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/domain/shared"
	"github.com/marketplace/storefront/internal/infrastructure/persistence/models"
)

// GormCartRepository implements cart.ItemRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// ListByUser returns the user's cart lines with their products, oldest first
func (r *GormCartRepository) ListByUser(ctx context.Context, userID int64) ([]cart.RemoteCartItem, error) {
	var rows []models.CartItemModel
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]cart.RemoteCartItem, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, nil
}

// AddItems merges the payloads into the user's cart in one transaction.
// Unknown products reject the whole batch.
func (r *GormCartRepository) AddItems(ctx context.Context, userID int64, items []cart.CartItemPayload) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]int64, 0, len(items))
		for _, item := range items {
			if item.ProductID <= 0 || item.Quantity <= 0 {
				return shared.NewDomainError(shared.CodeInvalidInput, "Cart items need a positive product_id and quantity")
			}
			ids = append(ids, item.ProductID)
		}
		known, err := NewGormProductRepository(tx).Exists(ctx, ids)
		if err != nil {
			return err
		}

		for _, item := range items {
			if !known[item.ProductID] {
				return shared.Errorf(shared.CodeNotFound, "Product %d not found", item.ProductID)
			}
			line, err := findLine(tx, userID, item.ProductID, item.ColorID, item.SizeID)
			if err != nil {
				return err
			}
			if line != nil {
				if err := tx.Model(line).Update("quantity", line.Quantity+item.Quantity).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Create(&models.CartItemModel{
				UserID:    userID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				ColorID:   item.ColorID,
				SizeID:    item.SizeID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateQuantity sets the quantity of the line matching product and variant
func (r *GormCartRepository) UpdateQuantity(ctx context.Context, userID int64, update cart.QuantityUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := findLine(tx, userID, update.ProductID, update.ColorID, update.SizeID)
		if err != nil {
			return err
		}
		if line == nil {
			return shared.ErrNotFound
		}
		if update.Quantity <= 0 {
			return tx.Delete(line).Error
		}
		return tx.Model(line).Update("quantity", update.Quantity).Error
	})
}

// Delete removes one of the user's cart lines
func (r *GormCartRepository) Delete(ctx context.Context, userID, itemID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItemModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// findLine returns the line for product and variant, or nil
func findLine(tx *gorm.DB, userID, productID int64, colorID, sizeID *int64) (*models.CartItemModel, error) {
	query := tx.Where("user_id = ? AND product_id = ?", userID, productID)
	if colorID == nil {
		query = query.Where("color_id IS NULL")
	} else {
		query = query.Where("color_id = ?", *colorID)
	}
	if sizeID == nil {
		query = query.Where("size_id IS NULL")
	} else {
		query = query.Where("size_id = ?", *sizeID)
	}

	var rows []models.CartItemModel
	if err := query.Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

var _ cart.ItemRepository = (*GormCartRepository)(nil)
