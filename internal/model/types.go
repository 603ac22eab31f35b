// Package model defines the shared domain types for the commerce
// engine: cart lines, wishlist items, order lookup results, and the
// error/money conventions used across packages.
//
// All price fields are int64 minor units (cents). The storefront API
// serializes these types as JSON directly.
package model

import "time"

// CartLine is a single purchasable variant in the cart.
// ID is the variant key derived from (ProductID, Size, Color); the
// ledger guarantees at most one line per ID.
type CartLine struct {
	ID                string `json:"id"`
	ProductID         string `json:"productId"`
	Title             string `json:"title"`
	Image             string `json:"image,omitempty"`
	UnitPrice         int64  `json:"unitPrice"`
	OriginalUnitPrice int64  `json:"originalUnitPrice,omitempty"`
	Currency          string `json:"currency"`
	Size              string `json:"size"`
	Color             string `json:"color"`
	Vendor            string `json:"vendor,omitempty"`
	Quantity          int    `json:"quantity"`

	// MaxQuantity is the stock ceiling for this variant.
	// Zero means no ceiling is known.
	MaxQuantity int `json:"maxQuantity,omitempty"`
}

// CartLineInput is the caller-facing payload for adding a variant.
// The ledger derives the line ID; callers never supply one.
type CartLineInput struct {
	ProductID         string `json:"productId"`
	Title             string `json:"title"`
	Image             string `json:"image,omitempty"`
	UnitPrice         int64  `json:"unitPrice"`
	OriginalUnitPrice int64  `json:"originalUnitPrice,omitempty"`
	Currency          string `json:"currency"`
	Size              string `json:"size"`
	Color             string `json:"color"`
	Vendor            string `json:"vendor,omitempty"`
	Quantity          int    `json:"quantity"`
	MaxQuantity       int    `json:"maxQuantity,omitempty"`
}

// CartSummary is the cart shape sent to the server for authoritative
// coupon validation. Line detail beyond price and quantity is omitted;
// the server only needs enough to price the discount.
type CartSummary struct {
	Subtotal int64             `json:"subtotal"`
	Currency string            `json:"currency"`
	Items    []CartSummaryItem `json:"items"`
}

// CartSummaryItem is one line of a CartSummary.
type CartSummaryItem struct {
	ProductID string `json:"productId"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// ProductSummary is the compact product shape embedded in wishlist
// items. Mirrors what the storefront list endpoint returns.
type ProductSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Image     string `json:"image,omitempty"`
	UnitPrice int64  `json:"unitPrice"`
	Currency  string `json:"currency"`
}

// WishlistItem is one entry of the server-side wishlist.
type WishlistItem struct {
	ID        string         `json:"id"`
	ProductID string         `json:"productId"`
	Product   ProductSummary `json:"product"`
	CreatedAt time.Time      `json:"createdAt"`
}

// CouponValidation is the authoritative server verdict on a coupon
// code. The local discount table is only a pre-check; this result wins
// at checkout.
type CouponValidation struct {
	Valid           bool    `json:"valid"`
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discountPercent"`
	Reason          string  `json:"reason,omitempty"`
}

// ServiceMeta describes the storefront API for compatibility checks.
// Versions are semver strings without the "v" prefix.
type ServiceMeta struct {
	APIVersion       string `json:"apiVersion"`
	MinClientVersion string `json:"minClientVersion,omitempty"`
}
