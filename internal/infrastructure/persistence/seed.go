package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/domain/identity"
	"github.com/marketplace/storefront/internal/domain/shared"
	"github.com/marketplace/storefront/internal/infrastructure/persistence/models"
)

// Demo account created by Seed
const (
	DemoUsername = "demo"
	DemoPassword = "demo-password"
)

func vendor(id int64) *int64 { return &id }

// DemoProducts is the catalog Seed installs. Products belong to different
// vendors of the marketplace.
func DemoProducts() []cart.ProductSnapshot {
	return []cart.ProductSnapshot{
		{ID: 101, Title: "Stoneware Mug", Images: []string{"/img/mug.jpg"}, Price: decimal.RequireFromString("12.50"), VendorID: vendor(1)},
		{ID: 202, Title: "Linen Tote Bag", Images: []string{"/img/tote.jpg", "/img/tote-2.jpg"}, Price: decimal.RequireFromString("24.00"), VendorID: vendor(1)},
		{ID: 303, Title: "Merino Beanie", Images: []string{"/img/beanie.jpg"}, Price: decimal.RequireFromString("31.99"), VendorID: vendor(2)},
		{ID: 404, Title: "Walnut Cutting Board", Images: []string{"/img/board.jpg"}, Price: decimal.RequireFromString("58.00"), VendorID: vendor(3)},
		{ID: 505, Title: "Pour-over Coffee Kit", Images: []string{"/img/coffee.jpg"}, Price: decimal.RequireFromString("44.75"), VendorID: vendor(3)},
	}
}

// Seed installs the demo catalog and user when the tables are empty
func Seed(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.ProductModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count == 0 {
		products := NewGormProductRepository(db)
		for _, p := range DemoProducts() {
			product := p
			if err := products.Save(ctx, &product); err != nil {
				return fmt.Errorf("seed product %d: %w", p.ID, err)
			}
		}
	}

	users := NewGormUserRepository(db)
	_, err := users.FindByUsername(ctx, DemoUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("find demo user: %w", err)
	}
	user, err := identity.NewUser(DemoUsername, DemoPassword)
	if err != nil {
		return err
	}
	if err := users.Save(ctx, user); err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}
	return nil
}
