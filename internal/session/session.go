// Package session composes the commerce engine for one shopper
// session: cart ledger, wishlist reconciler and order resolver behind
// a single facade.
//
// UI and agent code talk to the Session only. It is an explicit owned
// object constructed at session start and passed by reference — the
// single-instance-per-session semantics without a package-level
// singleton.
package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"shopengine/internal/api"
	"shopengine/internal/cart"
	"shopengine/internal/model"
	"shopengine/internal/orders"
	"shopengine/internal/storage"
	"shopengine/internal/wishlist"
)

// Session is the surface consumed by UI and agent code.
type Session struct {
	id       string
	cart     *cart.Ledger
	wishlist *wishlist.Reconciler
	orders   *orders.Resolver
	client   *api.Client
	logger   *slog.Logger
}

// New wires a session over the given API client and durable store.
// Cart and wishlist hydrate from the store immediately; server state
// arrives with the first RefreshWishlist.
func New(client *api.Client, store storage.Store, logger *slog.Logger) *Session {
	return &Session{
		id:       uuid.NewString(),
		cart:     cart.NewLedger(store, logger),
		wishlist: wishlist.NewReconciler(client, store, logger),
		orders:   orders.NewResolver(client, logger),
		client:   client,
		logger:   logger,
	}
}

// ID is the engine-local session identifier, used for log correlation.
func (s *Session) ID() string { return s.id }

// === Cart ===

// AddToCart merges a variant into the cart.
func (s *Session) AddToCart(input model.CartLineInput) {
	s.cart.AddLine(input)
}

// RemoveFromCart deletes a cart line by id. No-op if absent.
func (s *Session) RemoveFromCart(lineID string) {
	s.cart.RemoveLine(lineID)
}

// SetCartQuantity sets a line's quantity, clamped to its ceiling.
func (s *Session) SetCartQuantity(lineID string, quantity int) {
	s.cart.SetQuantity(lineID, quantity)
}

// ClearCart empties the cart and its coupon together.
func (s *Session) ClearCart() {
	s.cart.Clear()
}

// CartLines returns the cart lines in display order.
func (s *Session) CartLines() []model.CartLine { return s.cart.Lines() }

// Subtotal is the pre-discount cart value in cents.
func (s *Session) Subtotal() int64 { return s.cart.Subtotal() }

// Total is the cart value after the applied coupon, in cents.
func (s *Session) Total() int64 { return s.cart.Total() }

// ItemCount is the total quantity across all lines.
func (s *Session) ItemCount() int { return s.cart.ItemCount() }

// Coupon returns the applied coupon code and percent.
func (s *Session) Coupon() (string, float64) { return s.cart.Coupon() }

// ApplyCoupon runs the local table pre-check and applies on a hit.
// Not authoritative; checkout must go through
// ValidateCouponAuthoritative.
func (s *Session) ApplyCoupon(code string) bool {
	return s.cart.ApplyCoupon(code)
}

// RemoveCoupon clears coupon state.
func (s *Session) RemoveCoupon() {
	s.cart.RemoveCoupon()
}

// ValidateCouponAuthoritative asks the server to validate code against
// the current cart and makes the ledger agree with the verdict. The
// server result always wins: a code the local table liked gets cleared
// when the server rejects it, and a server-approved percent replaces a
// diverging local one.
func (s *Session) ValidateCouponAuthoritative(ctx context.Context, code string) (*model.CouponValidation, error) {
	result, err := s.client.ValidateCoupon(ctx, code, s.cart.Summary())
	if err != nil {
		return nil, err
	}

	localCode, localPercent := s.cart.Coupon()
	if result.Valid {
		if localCode != "" && localPercent != result.DiscountPercent {
			s.logger.Warn("local coupon table disagrees with server",
				slog.String("code", code),
				slog.Float64("local_percent", localPercent),
				slog.Float64("server_percent", result.DiscountPercent),
			)
		}
		s.cart.SetCoupon(code, result.DiscountPercent)
		return result, nil
	}

	if localCode != "" {
		s.logger.Warn("server rejected locally applied coupon, clearing",
			slog.String("code", localCode),
			slog.String("reason", result.Reason),
		)
		s.cart.RemoveCoupon()
	}
	return result, nil
}

// === Wishlist ===

// AddToWishlist likes a product, optimistically.
func (s *Session) AddToWishlist(ctx context.Context, productID string) error {
	return s.wishlist.Add(ctx, productID)
}

// RemoveFromWishlist unlikes a product, optimistically.
func (s *Session) RemoveFromWishlist(ctx context.Context, productID string) error {
	return s.wishlist.Remove(ctx, productID)
}

// InWishlist reports membership from the local set.
func (s *Session) InWishlist(productID string) bool {
	return s.wishlist.IsMember(productID)
}

// WishlistItems returns the last server snapshot for rendering.
func (s *Session) WishlistItems() []model.WishlistItem {
	return s.wishlist.Items()
}

// RefreshWishlist reconciles the local set against the server.
// Call after sign-in, when the bearer identity is established.
func (s *Session) RefreshWishlist(ctx context.Context) error {
	return s.wishlist.Refresh(ctx)
}

// === Orders ===

// TrackOrder resolves a tracking token across both order backends.
func (s *Session) TrackOrder(ctx context.Context, trackingToken string) (model.OrderLookup, error) {
	return s.orders.Resolve(ctx, trackingToken)
}

// === Lifecycle ===

// SignOut drops the identity-scoped state. The wishlist belongs to the
// account and is cleared; the cart stays with the device.
func (s *Session) SignOut() {
	s.wishlist.Reset()
	s.logger.Info("session signed out", slog.String("session_id", s.id))
}
