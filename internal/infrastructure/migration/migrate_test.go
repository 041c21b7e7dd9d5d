package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/marketplace/storefront/internal/infrastructure/persistence"
)

func TestMigrator_UpDown(t *testing.T) {
	db, err := persistence.NewDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()

	m := New(db.DB, zaptest.NewLogger(t))
	require.NoError(t, m.Up())
	assert.ElementsMatch(t, []string{"users", "products", "cart_items"}, m.Tables())

	// idempotent
	require.NoError(t, m.Up())

	require.NoError(t, m.Down())
	assert.Empty(t, m.Tables())
}
