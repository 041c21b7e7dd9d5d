package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/domain/shared"
	"github.com/marketplace/storefront/internal/infrastructure/persistence/models"
)

// GormProductRepository implements cart.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*cart.ProductSnapshot, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns every product ordered by id
func (r *GormProductRepository) List(ctx context.Context) ([]cart.ProductSnapshot, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]cart.ProductSnapshot, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Save inserts or updates a product. A zero id is assigned by the database.
func (r *GormProductRepository) Save(ctx context.Context, product *cart.ProductSnapshot) error {
	var model models.ProductModel
	model.FromDomain(product)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "images", "price", "vendor_id", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return err
	}
	product.ID = model.ID
	return nil
}

// Exists reports which of ids are known products
func (r *GormProductRepository) Exists(ctx context.Context, ids []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var existing []int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

var _ cart.ProductRepository = (*GormProductRepository)(nil)
