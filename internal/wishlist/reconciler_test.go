package wishlist

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopengine/internal/model"
	"shopengine/internal/storage"
)

// mockAPI implements RemoteAPI with configurable function fields.
type mockAPI struct {
	mu          sync.Mutex
	listFn      func(ctx context.Context) ([]model.WishlistItem, error)
	addFn       func(ctx context.Context, productID string) (*model.WishlistItem, error)
	removeFn    func(ctx context.Context, productID string) error
	listCalls   int
	addCalls    int
	removeCalls int
}

func (m *mockAPI) ListWishlist(ctx context.Context) ([]model.WishlistItem, error) {
	m.mu.Lock()
	m.listCalls++
	fn := m.listFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (m *mockAPI) AddWishlistItem(ctx context.Context, productID string) (*model.WishlistItem, error) {
	m.mu.Lock()
	m.addCalls++
	fn := m.addFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, productID)
	}
	return &model.WishlistItem{ID: "w1", ProductID: productID}, nil
}

func (m *mockAPI) RemoveWishlistItem(ctx context.Context, productID string) error {
	m.mu.Lock()
	m.removeCalls++
	fn := m.removeFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, productID)
	}
	return nil
}

func serverItems(productIDs ...string) []model.WishlistItem {
	items := make([]model.WishlistItem, 0, len(productIDs))
	for _, id := range productIDs {
		items = append(items, model.WishlistItem{
			ID:        "w-" + id,
			ProductID: id,
			CreatedAt: time.Now(),
		})
	}
	return items
}

func newTestReconciler(api *mockAPI) *Reconciler {
	return NewReconciler(api, storage.NewMemoryStore(), slog.Default())
}

func TestAdd_OptimisticBeforeSettle(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := &mockAPI{
		addFn: func(ctx context.Context, productID string) (*model.WishlistItem, error) {
			close(started)
			<-release
			return nil, model.NewUpstreamError("storefront", errors.New("timeout"))
		},
	}
	r := newTestReconciler(api)

	done := make(chan error, 1)
	go func() { done <- r.Add(context.Background(), "p1") }()

	// Membership flips before the network call settles.
	<-started
	assert.True(t, r.IsMember("p1"), "optimistic add must be visible before settle")

	// Non-404 failure rolls the optimism back.
	close(release)
	err := <-done
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUpstreamError))
	assert.False(t, r.IsMember("p1"), "failed add must revert membership")
}

func TestAdd_SuccessReconcilesFromServer(t *testing.T) {
	api := &mockAPI{
		listFn: func(ctx context.Context) ([]model.WishlistItem, error) {
			return serverItems("p1", "p9"), nil
		},
	}
	r := newTestReconciler(api)

	require.NoError(t, r.Add(context.Background(), "p1"))

	// Local set equals the server-returned set after reconciliation.
	assert.Equal(t, []string{"p1", "p9"}, r.ProductIDs())
	assert.Equal(t, 1, api.listCalls)
}

func TestAdd_AlreadyMemberIsNoop(t *testing.T) {
	api := &mockAPI{}
	r := newTestReconciler(api)
	r.Reconcile(serverItems("p1"))

	require.NoError(t, r.Add(context.Background(), "p1"))
	assert.Equal(t, 0, api.addCalls, "no remote call for an existing member")
}

func TestAdd_NotFoundIsHardFailure(t *testing.T) {
	api := &mockAPI{
		addFn: func(ctx context.Context, productID string) (*model.WishlistItem, error) {
			return nil, model.NewNotFoundError("product")
		},
	}
	r := newTestReconciler(api)

	err := r.Add(context.Background(), "ghost")
	require.Error(t, err, "server rejecting the product cannot be absorbed")
	assert.False(t, r.IsMember("ghost"))
}

func TestRemove_NotFoundUpstreamAcceptedAsSuccess(t *testing.T) {
	api := &mockAPI{
		removeFn: func(ctx context.Context, productID string) error {
			return model.NewNotFoundError("wishlist item")
		},
	}
	r := newTestReconciler(api)
	r.Reconcile(serverItems("p1"))

	// The stores already agreed in intent: no rollback, no error.
	require.NoError(t, r.Remove(context.Background(), "p1"))
	assert.False(t, r.IsMember("p1"))
}

func TestRemove_TransientFailureRollsBack(t *testing.T) {
	api := &mockAPI{
		removeFn: func(ctx context.Context, productID string) error {
			return model.NewUpstreamError("storefront", errors.New("connection reset"))
		},
	}
	r := newTestReconciler(api)
	r.Reconcile(serverItems("p1"))

	err := r.Remove(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, r.IsMember("p1"), "transient failure must restore membership")
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	api := &mockAPI{}
	r := newTestReconciler(api)

	require.NoError(t, r.Remove(context.Background(), "p1"))
	assert.Equal(t, 0, api.removeCalls)
}

func TestStaleSettlementDoesNotClobberNewerState(t *testing.T) {
	// First add is slow and will fail; by the time it settles, the
	// product has been removed and re-added. The stale failure's
	// rollback must not win over the newer optimistic state.
	firstAddStarted := make(chan struct{})
	releaseFirstAdd := make(chan struct{})
	addCall := 0

	api := &mockAPI{}
	api.addFn = func(ctx context.Context, productID string) (*model.WishlistItem, error) {
		api.mu.Lock()
		addCall++
		call := addCall
		api.mu.Unlock()
		if call == 1 {
			close(firstAddStarted)
			<-releaseFirstAdd
			return nil, model.NewUpstreamError("storefront", errors.New("timeout"))
		}
		return &model.WishlistItem{ID: "w1", ProductID: productID}, nil
	}
	api.removeFn = func(ctx context.Context, productID string) error {
		return model.NewNotFoundError("wishlist item") // already absent upstream
	}
	api.listFn = func(ctx context.Context) ([]model.WishlistItem, error) {
		return serverItems("p1"), nil
	}

	r := newTestReconciler(api)

	firstAdd := make(chan error, 1)
	go func() { firstAdd <- r.Add(context.Background(), "p1") }()
	<-firstAddStarted

	// Newer mutations on the same product while the first add is in flight.
	require.NoError(t, r.Remove(context.Background(), "p1"))
	require.NoError(t, r.Add(context.Background(), "p1"))
	require.True(t, r.IsMember("p1"))

	// Stale failure settles now; its revert is sequence-guarded away.
	close(releaseFirstAdd)
	require.Error(t, <-firstAdd)
	assert.True(t, r.IsMember("p1"), "stale rollback must not contradict newer state")
}

func TestReconcile_ReplacesLocalSet(t *testing.T) {
	r := newTestReconciler(&mockAPI{})
	r.Reconcile(serverItems("p1", "p2"))
	r.Reconcile(serverItems("p3"))

	assert.False(t, r.IsMember("p1"))
	assert.False(t, r.IsMember("p2"))
	assert.True(t, r.IsMember("p3"))
	require.Len(t, r.Items(), 1)
	assert.Equal(t, "p3", r.Items()[0].ProductID)
}

func TestRefresh(t *testing.T) {
	api := &mockAPI{
		listFn: func(ctx context.Context) ([]model.WishlistItem, error) {
			return serverItems("p5"), nil
		},
	}
	r := newTestReconciler(api)

	require.NoError(t, r.Refresh(context.Background()))
	assert.True(t, r.IsMember("p5"))

	api.mu.Lock()
	api.listFn = func(ctx context.Context) ([]model.WishlistItem, error) {
		return nil, model.NewUpstreamError("storefront", errors.New("boom"))
	}
	api.mu.Unlock()
	assert.Error(t, r.Refresh(context.Background()))
}

func TestHydrationAndReset(t *testing.T) {
	store := storage.NewMemoryStore()
	api := &mockAPI{}

	first := NewReconciler(api, store, slog.Default())
	first.Reconcile(serverItems("p1", "p2"))

	// A fresh reconciler over the same store sees the persisted guest set.
	second := NewReconciler(api, store, slog.Default())
	assert.True(t, second.IsMember("p1"))
	assert.True(t, second.IsMember("p2"))

	// Sign-out clears everything, durably.
	second.Reset()
	assert.False(t, second.IsMember("p1"))
	third := NewReconciler(api, store, slog.Default())
	assert.Empty(t, third.ProductIDs())
}
