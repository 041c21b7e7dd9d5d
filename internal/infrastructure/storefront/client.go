package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/infrastructure/logger"
	"github.com/marketplace/storefront/internal/infrastructure/telemetry"
)

// Client talks to the storefront backend cart and product endpoints.
// It implements cart.RemoteCart and cart.ProductLookup. Failures are
// returned as-is; the client never retries.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. Its transport is used unchanged.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a backend client. The default HTTP client wraps the
// default transport with otelhttp so every call gets a client span.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigMissingBaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "storefront " + r.Method + " " + r.URL.Path
				}),
			),
		}
	}
	return c, nil
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// GetCart fetches the authenticated user's cart
func (c *Client) GetCart(ctx context.Context, token string) ([]cart.RemoteCartItem, error) {
	if token == "" {
		return nil, cart.ErrMissingToken
	}
	ctx, span := telemetry.StartSpan(ctx, "storefront.GetCart")
	defer span.End()

	var items []cart.RemoteCartItem
	if err := c.doRequest(ctx, http.MethodGet, "/cart", token, nil, &items); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if items == nil {
		items = []cart.RemoteCartItem{}
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrItemCount, len(items))
	return items, nil
}

// AddItems submits items as one bulk-add request
func (c *Client) AddItems(ctx context.Context, token string, items []cart.CartItemPayload) error {
	if token == "" {
		return cart.ErrMissingToken
	}
	ctx, span := telemetry.StartSpan(ctx, "storefront.AddItems",
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(items)))
	defer span.End()

	if items == nil {
		items = []cart.CartItemPayload{}
	}
	err := c.doRequest(ctx, http.MethodPost, "/cart/items", token, addItemsRequest{CartItems: items}, nil)
	telemetry.RecordError(span, err)
	return err
}

// UpdateQuantity rewrites the quantity of the line matching the update's
// product and variant. The quantity is sent unmodified.
func (c *Client) UpdateQuantity(ctx context.Context, token string, update cart.QuantityUpdate) error {
	if token == "" {
		return cart.ErrMissingToken
	}
	ctx, span := telemetry.StartSpan(ctx, "storefront.UpdateQuantity",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, update.ProductID),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, update.Quantity))
	defer span.End()

	err := c.doRequest(ctx, http.MethodPut, "/cart/items", token, update, nil)
	telemetry.RecordError(span, err)
	return err
}

// DeleteItem removes one remote cart item by id
func (c *Client) DeleteItem(ctx context.Context, token string, itemID int64) error {
	if token == "" {
		return cart.ErrMissingToken
	}
	ctx, span := telemetry.StartSpan(ctx, "storefront.DeleteItem",
		telemetry.WithAttribute(telemetry.SpanAttrItemID, itemID))
	defer span.End()

	err := c.doRequest(ctx, http.MethodDelete, "/cart/items/"+strconv.FormatInt(itemID, 10), token, nil, nil)
	telemetry.RecordError(span, err)
	return err
}

// GetProduct fetches public product display data
func (c *Client) GetProduct(ctx context.Context, productID int64) (*cart.ProductSnapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, "storefront.GetProduct",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID))
	defer span.End()

	var product cart.ProductSnapshot
	if err := c.doRequest(ctx, http.MethodGet, "/products/"+strconv.FormatInt(productID, 10), "", nil, &product); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if product.ID == 0 {
		product.ID = productID
	}
	return &product, nil
}

// ListProducts fetches the public catalog
func (c *Client) ListProducts(ctx context.Context) ([]cart.ProductSnapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, "storefront.ListProducts")
	defer span.End()

	var products []cart.ProductSnapshot
	if err := c.doRequest(ctx, http.MethodGet, "/products", "", nil, &products); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return products, nil
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "storefront.Login")
	defer span.End()

	var result LoginResult
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", "", loginRequest{Username: username, Password: password}, &result); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if result.AccessToken == "" {
		err := fmt.Errorf("%w: login returned no token", ErrInvalidResponse)
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &result, nil
}

// doRequest performs one request and decodes the envelope data into out.
// A nil out discards the data.
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("storefront: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("storefront: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := logger.WithLogger(ctx, c.logger).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("storefront request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrBackendUnavailable, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode >= 400 {
		reqErr := &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			reqErr.Code = env.Error.Code
			reqErr.Message = env.Error.Message
		}
		log.Warn("storefront request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("code", reqErr.Code),
		)
		return reqErr
	}

	if decodeErr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, decodeErr)
	}
	if !env.Success {
		reqErr := &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode}
		if env.Error != nil {
			reqErr.Code = env.Error.Code
			reqErr.Message = env.Error.Message
		}
		return reqErr
	}
	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	log.Debug("storefront request completed", zap.Int("status", resp.StatusCode))
	return nil
}

// IsUnauthorized reports whether err is a rejected bearer token
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
