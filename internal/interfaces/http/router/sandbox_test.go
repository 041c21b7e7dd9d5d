package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	identityapp "github.com/marketplace/storefront/internal/application/identity"
	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/infrastructure/auth"
	"github.com/marketplace/storefront/internal/infrastructure/config"
	"github.com/marketplace/storefront/internal/infrastructure/migration"
	"github.com/marketplace/storefront/internal/infrastructure/persistence"
	"github.com/marketplace/storefront/internal/infrastructure/storefront"
	"github.com/marketplace/storefront/internal/interfaces/http/handler"
)

// newSandbox serves a seeded sandbox backend and returns a client for it
func newSandbox(t *testing.T) *storefront.Client {
	t.Helper()
	log := zaptest.NewLogger(t)

	db, err := persistence.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migration.New(db.DB, log).Up())
	require.NoError(t, persistence.Seed(context.Background(), db.DB))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "sandbox-test-secret-of-32-chars!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "storefront-sandbox",
	})
	users := persistence.NewGormUserRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)

	engine := NewSandboxEngine(SandboxConfig{
		Logger:      log,
		Tokens:      jwtService,
		Cart:        handler.NewCartHandler(persistence.NewGormCartRepository(db.DB)),
		Products:    handler.NewProductHandler(products),
		Auth:        handler.NewAuthHandler(identityapp.NewAuthService(users, jwtService, log)),
		System:      handler.NewSystemHandler(db),
		MaxBodySize: 1 << 20,
	})
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	client, err := storefront.NewClient(storefront.NewConfig(server.URL+"/api/v1"), storefront.WithLogger(log))
	require.NoError(t, err)
	return client
}

func login(t *testing.T, client *storefront.Client) string {
	t.Helper()
	result, err := client.Login(context.Background(), persistence.DemoUsername, persistence.DemoPassword)
	require.NoError(t, err)
	return result.AccessToken
}

func TestSandbox_CartRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newSandbox(t)
	token := login(t, client)

	items, err := client.GetCart(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, client.AddItems(ctx, token, []cart.CartItemPayload{
		{ProductID: 101, Quantity: 1},
		{ProductID: 202, Quantity: 2},
	}))
	require.NoError(t, client.AddItems(ctx, token, []cart.CartItemPayload{{ProductID: 101, Quantity: 2}}))

	items, err = client.GetCart(ctx, token)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Stoneware Mug", items[0].Product.Title)

	require.NoError(t, client.UpdateQuantity(ctx, token, cart.QuantityUpdateFor(items[1], 5)))
	require.NoError(t, client.DeleteItem(ctx, token, items[0].ID))

	items, err = client.GetCart(ctx, token)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(202), items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)

	// zero removes the line
	require.NoError(t, client.UpdateQuantity(ctx, token, cart.QuantityUpdateFor(items[0], 0)))
	items, err = client.GetCart(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSandbox_Errors(t *testing.T) {
	ctx := context.Background()
	client := newSandbox(t)
	token := login(t, client)

	_, err := client.GetCart(ctx, "forged-token")
	assert.True(t, storefront.IsUnauthorized(err))

	_, err = client.Login(ctx, persistence.DemoUsername, "wrong-password")
	assert.True(t, storefront.IsUnauthorized(err))

	err = client.AddItems(ctx, token, []cart.CartItemPayload{{ProductID: 999, Quantity: 1}})
	var reqErr *storefront.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, "ERR_NOT_FOUND", reqErr.Code)

	err = client.DeleteItem(ctx, token, 12345)
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}

func TestSandbox_PublicCatalog(t *testing.T) {
	ctx := context.Background()
	client := newSandbox(t)

	product, err := client.GetProduct(ctx, 303)
	require.NoError(t, err)
	assert.Equal(t, "Merino Beanie", product.Title)

	products, err := client.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(persistence.DemoProducts()))

	_, err = client.GetProduct(ctx, 999)
	var reqErr *storefront.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}

func TestSandbox_Health(t *testing.T) {
	client := newSandbox(t)
	base := client.BaseURL()

	resp, err := http.Get(base[:len(base)-len("/api/v1")] + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
