// Package wishlist keeps the local "liked products" set consistent
// with the eventually-consistent server wishlist.
//
// Mutations are optimistic: the local set changes immediately, the
// remote call settles later, and a qualifying failure runs a
// compensating action captured before the mutation. A per-product
// mutation sequence (not timestamps, which are clock-skew prone)
// guards settlement so a stale failure never clobbers a newer
// optimistic state.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"shopengine/internal/model"
	"shopengine/internal/storage"
)

// RemoteAPI is the slice of the storefront API the reconciler needs.
type RemoteAPI interface {
	ListWishlist(ctx context.Context) ([]model.WishlistItem, error)
	AddWishlistItem(ctx context.Context, productID string) (*model.WishlistItem, error)
	RemoveWishlistItem(ctx context.Context, productID string) error
}

// Reconciler owns wishlist membership for a session. local is the
// source of truth for membership queries during optimistic windows;
// snapshot is the last list fetched from the storefront.
type Reconciler struct {
	mu       sync.Mutex
	local    map[string]struct{}
	seq      map[string]uint64 // per-product mutation sequence
	snapshot []model.WishlistItem

	api    RemoteAPI
	store  storage.Store
	logger *slog.Logger
}

// NewReconciler creates a reconciler hydrated from durable storage.
// The persisted guest set is overwritten by the first successful
// server fetch once an identity is established.
func NewReconciler(api RemoteAPI, store storage.Store, logger *slog.Logger) *Reconciler {
	r := &Reconciler{
		local:  make(map[string]struct{}),
		seq:    make(map[string]uint64),
		api:    api,
		store:  store,
		logger: logger,
	}

	data, ok, err := store.Get(storage.KeyWishlist)
	if err != nil {
		logger.Warn("wishlist snapshot read failed, starting empty", slog.Any("error", err))
		return r
	}
	if !ok {
		return r
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		logger.Warn("wishlist snapshot corrupt, starting empty", slog.Any("error", err))
		return r
	}
	for _, id := range ids {
		r.local[id] = struct{}{}
	}
	return r
}

// IsMember reports whether productID is liked. This is the only query
// path consumers may use; the server snapshot is never read directly.
func (r *Reconciler) IsMember(productID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.local[productID]
	return ok
}

// Add likes a product: optimistic local insert, then the remote call.
// Already-member is a no-op. On remote failure (including not-found,
// which means the server refuses the product) the insert is reverted,
// unless a newer mutation for the same product landed in the meantime.
func (r *Reconciler) Add(ctx context.Context, productID string) error {
	r.mu.Lock()
	if _, ok := r.local[productID]; ok {
		r.mu.Unlock()
		return nil
	}

	r.seq[productID]++
	seq := r.seq[productID]
	// Compensating action captured before the mutation.
	revert := func() { delete(r.local, productID) }

	r.local[productID] = struct{}{}
	r.persistLocked()
	r.mu.Unlock()

	if _, err := r.api.AddWishlistItem(ctx, productID); err != nil {
		r.settleFailure(productID, seq, revert)
		return fmt.Errorf("adding wishlist item %s: %w", productID, err)
	}

	r.refreshFromServer(ctx)
	return nil
}

// Remove unlikes a product: optimistic local delete, then the remote
// call. A not-found from the server means the item was already absent
// upstream; the stores agreed in intent, so the optimistic removal
// stands and no revert happens. Any other failure rolls back.
func (r *Reconciler) Remove(ctx context.Context, productID string) error {
	r.mu.Lock()
	if _, ok := r.local[productID]; !ok {
		r.mu.Unlock()
		return nil
	}

	r.seq[productID]++
	seq := r.seq[productID]
	revert := func() { r.local[productID] = struct{}{} }

	delete(r.local, productID)
	r.persistLocked()
	r.mu.Unlock()

	if err := r.api.RemoveWishlistItem(ctx, productID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Already gone upstream: treated as success.
			return nil
		}
		r.settleFailure(productID, seq, revert)
		return fmt.Errorf("removing wishlist item %s: %w", productID, err)
	}

	r.refreshFromServer(ctx)
	return nil
}

// Reconcile replaces the local set with the exact product-id set from
// serverItems and records the snapshot. Called after every successful
// fetch or settled mutation.
func (r *Reconciler) Reconcile(serverItems []model.WishlistItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.local = make(map[string]struct{}, len(serverItems))
	for _, item := range serverItems {
		r.local[item.ProductID] = struct{}{}
	}
	r.snapshot = serverItems
	r.persistLocked()
}

// Refresh fetches the server wishlist and reconciles against it.
func (r *Reconciler) Refresh(ctx context.Context) error {
	items, err := r.api.ListWishlist(ctx)
	if err != nil {
		return fmt.Errorf("fetching wishlist: %w", err)
	}
	r.Reconcile(items)
	return nil
}

// Items returns the last server snapshot, for list rendering.
// Membership queries must go through IsMember instead.
func (r *Reconciler) Items() []model.WishlistItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.WishlistItem, len(r.snapshot))
	copy(out, r.snapshot)
	return out
}

// ProductIDs returns the liked ids in sorted order.
func (r *Reconciler) ProductIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedIDsLocked()
}

// Reset clears all wishlist state. Called on sign-out.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.local = make(map[string]struct{})
	r.seq = make(map[string]uint64)
	r.snapshot = nil
	if err := r.store.Delete(storage.KeyWishlist); err != nil {
		r.logger.Warn("wishlist snapshot delete failed", slog.Any("error", err))
	}
}

// settleFailure applies the compensating action, but only when no
// newer mutation for the product has superseded this one.
func (r *Reconciler) settleFailure(productID string, seq uint64, revert func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq[productID] != seq {
		// A newer optimistic mutation owns this product now;
		// this settlement must not contradict it.
		return
	}
	revert()
	r.persistLocked()
}

// refreshFromServer runs the post-success reconciliation fetch. A
// failed fetch keeps the optimistic state; the mutation itself already
// settled successfully.
func (r *Reconciler) refreshFromServer(ctx context.Context) {
	items, err := r.api.ListWishlist(ctx)
	if err != nil {
		r.logger.Warn("wishlist reconciliation fetch failed", slog.Any("error", err))
		return
	}
	r.Reconcile(items)
}

// persistLocked writes the id set synchronously. Called with r.mu held.
func (r *Reconciler) persistLocked() {
	ids := r.sortedIDsLocked()
	data, err := json.Marshal(ids)
	if err != nil {
		r.logger.Error("wishlist snapshot marshal failed", slog.Any("error", err))
		return
	}
	if err := r.store.Put(storage.KeyWishlist, data); err != nil {
		r.logger.Warn("wishlist snapshot write failed", slog.Any("error", err))
	}
}

func (r *Reconciler) sortedIDsLocked() []string {
	ids := make([]string, 0, len(r.local))
	for id := range r.local {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
