// Package api is the HTTP client for the storefront REST API: the
// wishlist, order tracking, coupon validation and service metadata
// endpoints the engine consumes.
//
// All request/response bodies are JSON. Error responses carry a
// model.APIError body; parseError maps them back onto the sentinel
// error taxonomy so callers can use errors.Is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"shopengine/internal/model"
	"shopengine/internal/transport"
)

const (
	pathWishlist       = "/wishlist"
	pathTrackOrder     = "/orders/track"
	pathTrackCustom    = "/orders/custom/track"
	pathValidateCoupon = "/coupons/validate"
	pathMeta           = "/meta"

	userAgent = "shopengine/1.0"

	defaultTimeout = 30 * time.Second
)

// Config holds client settings.
type Config struct {
	// BaseURL is the storefront API root, without trailing slash.
	BaseURL string

	// Token is the bearer identity, empty for guest sessions.
	Token string

	// Timeout bounds each request. Zero means the 30s default.
	Timeout time.Duration

	// HTTPClient overrides the default client. When nil, a client
	// with the browser-fingerprint transport is used; the storefront
	// CDN rate limits Go's native TLS fingerprint.
	HTTPClient *http.Client
}

// Client is the storefront API HTTP client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a storefront API client.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport.NewBrowserTransport(timeout),
		}
	}

	return &Client{
		baseURL:    trimSlash(cfg.BaseURL),
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// === Wishlist Operations ===

// ListWishlist retrieves the full server wishlist.
func (c *Client) ListWishlist(ctx context.Context) ([]model.WishlistItem, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathWishlist, nil)
	if err != nil {
		return nil, fmt.Errorf("creating wishlist request: %w", err)
	}

	var items []model.WishlistItem
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddWishlistItem adds a product to the server wishlist.
// A 404 here means the server rejects the product itself.
func (c *Client) AddWishlistItem(ctx context.Context, productID string) (*model.WishlistItem, error) {
	body := map[string]string{"productId": productID}

	req, err := c.newRequest(ctx, http.MethodPost, pathWishlist, body)
	if err != nil {
		return nil, fmt.Errorf("creating add-wishlist request: %w", err)
	}

	var item model.WishlistItem
	if err := c.do(req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveWishlistItem deletes a product from the server wishlist.
// Returns an error wrapping model.ErrNotFound when the item is already
// absent upstream; the reconciler treats that as success.
func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) error {
	path := pathWishlist + "/" + url.PathEscape(productID)

	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return fmt.Errorf("creating remove-wishlist request: %w", err)
	}

	return c.do(req, nil)
}

// === Order Tracking ===

// TrackOrder fetches a standard order by its tracking number.
func (c *Client) TrackOrder(ctx context.Context, orderNumber string) (*model.StandardOrder, error) {
	path := pathTrackOrder + "/" + url.PathEscape(orderNumber)

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating track request: %w", err)
	}

	var order model.StandardOrder
	if err := c.do(req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// TrackCustomOrder fetches a custom-made order by its tracking number.
func (c *Client) TrackCustomOrder(ctx context.Context, orderNumber string) (*model.CustomOrder, error) {
	path := pathTrackCustom + "/" + url.PathEscape(orderNumber)

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating custom track request: %w", err)
	}

	var order model.CustomOrder
	if err := c.do(req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// === Coupon Validation ===

// ValidateCoupon asks the server to validate a coupon against the
// cart. This result is authoritative; the engine's local table is a
// pre-check only.
func (c *Client) ValidateCoupon(ctx context.Context, code string, cart model.CartSummary) (*model.CouponValidation, error) {
	body := struct {
		Code string            `json:"code"`
		Cart model.CartSummary `json:"cart"`
	}{Code: code, Cart: cart}

	req, err := c.newRequest(ctx, http.MethodPost, pathValidateCoupon, body)
	if err != nil {
		return nil, fmt.Errorf("creating coupon validation request: %w", err)
	}

	var result model.CouponValidation
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// === HTTP Helpers ===

// newRequest creates a JSON request with auth and agent headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return req, nil
}

// do executes the request and decodes the response.
func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewUpstreamError("storefront", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.parseError(resp, body)
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}

	return nil
}

// parseError converts storefront error responses to model.APIError.
func (c *Client) parseError(resp *http.Response, body []byte) error {
	var apiErr model.APIError
	json.Unmarshal(body, &apiErr) // Best effort parse

	switch resp.StatusCode {
	case 401, 403:
		reason := apiErr.Message
		if reason == "" {
			reason = "storefront authentication failed"
		}
		return model.NewUnauthorizedError(reason)
	case 404:
		resource := "resource"
		if apiErr.Message != "" {
			resource = apiErr.Message
		}
		return &model.APIError{
			Code:       "NOT_FOUND",
			Message:    resource,
			StatusCode: 404,
			Err:        model.ErrNotFound,
		}
	case 422:
		return model.NewCouponRejectedError(apiErr.Code, apiErr.Message)
	case 429:
		// The RateLimit header is an RFC 8941 dictionary; reset is
		// the seconds-until-quota hint.
		limit := ParseRateLimitHeader(resp.Header.Get("RateLimit"))
		return model.NewRateLimitError("storefront", limit.Reset)
	case 400:
		msg := apiErr.Message
		if msg == "" {
			msg = "invalid request"
		}
		return model.NewValidationError("request", msg)
	default:
		return model.NewUpstreamError("storefront",
			fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Message))
	}
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
