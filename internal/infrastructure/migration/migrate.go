package migration

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/marketplace/storefront/internal/infrastructure/persistence/models"
)

// Migrator applies the sandbox schema with GORM auto-migration
type Migrator struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a new Migrator instance
func New(db *gorm.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, logger: logger}
}

// Up creates or updates every sandbox table
func (m *Migrator) Up() error {
	m.logger.Info("Running migrations up")
	if err := m.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}
	m.logger.Info("Migrations applied", zap.Strings("tables", m.Tables()))
	return nil
}

// Down drops every sandbox table
func (m *Migrator) Down() error {
	m.logger.Info("Running migrations down")
	all := models.All()
	// reverse order so dependents go first
	for i := len(all) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
	}
	return nil
}

// Tables returns the sandbox tables that currently exist
func (m *Migrator) Tables() []string {
	var tables []string
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: m.db}
		if err := stmt.Parse(model); err != nil {
			continue
		}
		if m.db.Migrator().HasTable(stmt.Schema.Table) {
			tables = append(tables, stmt.Schema.Table)
		}
	}
	return tables
}
