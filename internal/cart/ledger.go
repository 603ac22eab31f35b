// Package cart owns the shopper's cart state: an ordered set of line
// items keyed by variant identity, plus coupon state and the derived
// totals.
//
// Every operation is a total function over its preconditions. Bad
// quantities and unknown line ids are silent no-ops rather than
// errors.
package cart

import (
	"encoding/json"
	"log/slog"
	"sync"

	"shopengine/internal/model"
	"shopengine/internal/storage"
	"shopengine/internal/variant"
)

// Ledger is the single owner of cart state for a session. Construct it
// at session start and pass it by reference; there is no package-level
// instance. Safe for concurrent use.
type Ledger struct {
	mu                    sync.Mutex
	lines                 []model.CartLine // insertion order is display order
	couponCode            string
	couponDiscountPercent float64

	store  storage.Store
	logger *slog.Logger
}

// snapshot is the durable JSON layout of the cart blob.
type snapshot struct {
	Lines                 []model.CartLine `json:"lines"`
	CouponCode            string           `json:"couponCode"`
	CouponDiscountPercent float64          `json:"couponDiscountPercent"`
}

// NewLedger creates a ledger hydrated from the durable store.
// A missing or unreadable snapshot starts an empty cart; local state
// corruption is never fatal to the session.
func NewLedger(store storage.Store, logger *slog.Logger) *Ledger {
	l := &Ledger{store: store, logger: logger}

	data, ok, err := store.Get(storage.KeyCart)
	if err != nil {
		logger.Warn("cart snapshot read failed, starting empty", slog.Any("error", err))
		return l
	}
	if !ok {
		return l
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Warn("cart snapshot corrupt, starting empty", slog.Any("error", err))
		return l
	}

	l.lines = snap.Lines
	l.couponCode = snap.CouponCode
	l.couponDiscountPercent = snap.CouponDiscountPercent
	return l
}

// AddLine merges input into the ledger by variant identity.
//
// If a line with the same (productId, size, color) exists, its quantity
// accumulates and a newly supplied stock ceiling replaces the old one.
// The result is clamped to the ceiling; a request past the ceiling
// saturates silently instead of failing.
func (l *Ledger) AddLine(input model.CartLineInput) {
	if input.Quantity < 1 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := variant.Key(input.ProductID, input.Size, input.Color)

	if i := l.indexOf(key); i >= 0 {
		line := &l.lines[i]
		line.Quantity += input.Quantity
		if input.MaxQuantity > 0 {
			line.MaxQuantity = input.MaxQuantity
		}
		clampLine(line)
		l.persist()
		return
	}

	line := model.CartLine{
		ID:                key,
		ProductID:         input.ProductID,
		Title:             input.Title,
		Image:             input.Image,
		UnitPrice:         input.UnitPrice,
		OriginalUnitPrice: input.OriginalUnitPrice,
		Currency:          input.Currency,
		Size:              input.Size,
		Color:             input.Color,
		Vendor:            input.Vendor,
		Quantity:          input.Quantity,
		MaxQuantity:       input.MaxQuantity,
	}
	clampLine(&line)
	l.lines = append(l.lines, line)
	l.persist()
}

// RemoveLine deletes the line with the given id. No-op if absent.
func (l *Ledger) RemoveLine(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return
	}
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	l.persist()
}

// SetQuantity sets the quantity for a line, clamped to its stock
// ceiling. Quantities below 1 and unknown ids are no-ops.
func (l *Ledger) SetQuantity(id string, quantity int) {
	if quantity < 1 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return
	}
	l.lines[i].Quantity = quantity
	clampLine(&l.lines[i])
	l.persist()
}

// Clear empties the cart and drops coupon state together. A coupon is
// scoped to a cart's contents and never carries over to an empty cart.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = nil
	l.couponCode = ""
	l.couponDiscountPercent = 0
	l.persist()
}

// ApplyCoupon checks code against the local discount table
// (case-insensitive) and applies it on a hit. Returns false and leaves
// state unchanged on a miss.
//
// The local table is a fast pre-check only. The server revalidates at
// checkout and its verdict is authoritative; see Session.
func (l *Ledger) ApplyCoupon(code string) bool {
	percent, ok := lookupCoupon(code)
	if !ok {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.couponCode = code
	l.couponDiscountPercent = percent
	l.persist()
	return true
}

// SetCoupon overrides coupon state with a server-validated result.
// Used when the authoritative validation disagrees with the local
// table.
func (l *Ledger) SetCoupon(code string, discountPercent float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.couponCode = code
	l.couponDiscountPercent = discountPercent
	l.persist()
}

// RemoveCoupon clears both coupon fields.
func (l *Ledger) RemoveCoupon() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.couponCode = ""
	l.couponDiscountPercent = 0
	l.persist()
}

// Coupon returns the applied code and discount percent, empty/zero
// when none.
func (l *Ledger) Coupon() (code string, discountPercent float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.couponCode, l.couponDiscountPercent
}

// Subtotal is Σ unitPrice × quantity in cents, recomputed on every
// call.
func (l *Ledger) Subtotal() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subtotalLocked()
}

// Total is the subtotal after the coupon discount, rounded to the
// nearest cent.
func (l *Ledger) Total() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.ApplyDiscountPercent(l.subtotalLocked(), l.couponDiscountPercent)
}

// ItemCount is Σ quantity across all lines.
func (l *Ledger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, line := range l.lines {
		count += line.Quantity
	}
	return count
}

// Lines returns a copy of the cart lines in display order. Callers
// never mutate ledger state directly.
func (l *Ledger) Lines() []model.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// Summary builds the cart shape sent for authoritative coupon
// validation. Currency comes from the first line; an empty cart has
// none.
func (l *Ledger) Summary() model.CartSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	sum := model.CartSummary{Subtotal: l.subtotalLocked()}
	for _, line := range l.lines {
		if sum.Currency == "" {
			sum.Currency = line.Currency
		}
		sum.Items = append(sum.Items, model.CartSummaryItem{
			ProductID: line.ProductID,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return sum
}

func (l *Ledger) subtotalLocked() int64 {
	var subtotal int64
	for _, line := range l.lines {
		subtotal += line.UnitPrice * int64(line.Quantity)
	}
	return subtotal
}

func (l *Ledger) indexOf(id string) int {
	for i, line := range l.lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the snapshot synchronously. Called with l.mu held.
// Write failures are logged and swallowed: losing durability degrades
// the session but must not break the in-memory cart.
func (l *Ledger) persist() {
	snap := snapshot{
		Lines:                 l.lines,
		CouponCode:            l.couponCode,
		CouponDiscountPercent: l.couponDiscountPercent,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		l.logger.Error("cart snapshot marshal failed", slog.Any("error", err))
		return
	}
	if err := l.store.Put(storage.KeyCart, data); err != nil {
		l.logger.Warn("cart snapshot write failed", slog.Any("error", err))
	}
}

// clampLine enforces quantity ≤ ceiling when a ceiling is known.
func clampLine(line *model.CartLine) {
	if line.MaxQuantity > 0 && line.Quantity > line.MaxQuantity {
		line.Quantity = line.MaxQuantity
	}
}
