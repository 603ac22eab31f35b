// Package mockapi is an in-memory implementation of the storefront
// API contract, used for local development and integration tests. It
// implements every endpoint the engine consumes: wishlist CRUD, both
// order tracking backends, coupon validation and service metadata.
package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopengine/internal/model"
)

// Server holds the mock storefront state behind a mutex.
type Server struct {
	mu       sync.Mutex
	products map[string]model.ProductSummary
	wishlist map[string]model.WishlistItem // keyed by product id
	standard map[string]model.StandardOrder
	custom   map[string]model.CustomOrder
	coupons  map[string]float64

	logger *slog.Logger
}

// New creates an empty mock storefront. Use the Seed helpers or
// SeedFixtures to populate it.
func New(logger *slog.Logger) *Server {
	return &Server{
		products: make(map[string]model.ProductSummary),
		wishlist: make(map[string]model.WishlistItem),
		standard: make(map[string]model.StandardOrder),
		custom:   make(map[string]model.CustomOrder),
		coupons:  make(map[string]float64),
		logger:   logger,
	}
}

// SeedFixtures loads a small demo catalog, two orders and the demo
// coupons. Matches what the shopctl usage examples assume.
func (s *Server) SeedFixtures() {
	s.SeedProduct(model.ProductSummary{ID: "p1", Title: "Wool Scarf", UnitPrice: 4500, Currency: "USD"})
	s.SeedProduct(model.ProductSummary{ID: "p2", Title: "Knit Beanie", UnitPrice: 2500, Currency: "USD"})
	s.SeedProduct(model.ProductSummary{ID: "p3", Title: "Cable Sweater", UnitPrice: 12000, Currency: "USD"})
	s.SeedStandardOrder(model.StandardOrder{
		OrderNumber: "ORD-1001",
		Status:      "shipped",
		Total:       14500,
		Currency:    "USD",
		Items: []model.StandardOrderItem{
			{ProductName: "Wool Scarf", Color: "red", Size: "M", Quantity: 1},
			{ProductName: "Cable Sweater", Color: "cream", Size: "L", Quantity: 1},
		},
	})
	s.SeedCustomOrder(model.CustomOrder{
		OrderNumber: "CUS-2002",
		Status:      "in_production",
		Quantity:    1,
		ProductType: "blanket",
		Color:       "forest green",
		Details:     "queen size, initials embroidered",
	})
	s.SeedCoupon("SAVE10", 10)
	s.SeedCoupon("VIP20", 20)
}

// SeedProduct registers a product that can be wishlisted.
func (s *Server) SeedProduct(p model.ProductSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SeedStandardOrder registers a trackable standard order.
func (s *Server) SeedStandardOrder(o model.StandardOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.standard[o.OrderNumber] = o
}

// SeedCustomOrder registers a trackable custom order.
func (s *Server) SeedCustomOrder(o model.CustomOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom[o.OrderNumber] = o
}

// SeedCoupon registers a valid coupon code.
func (s *Server) SeedCoupon(code string, discountPercent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[strings.ToLower(code)] = discountPercent
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/meta", s.handleMeta)
	r.Get("/wishlist", s.handleListWishlist)
	r.Post("/wishlist", s.handleAddWishlist)
	r.Delete("/wishlist/{productID}", s.handleRemoveWishlist)
	r.Get("/orders/track/{orderNumber}", s.handleTrackOrder)
	r.Get("/orders/custom/track/{orderNumber}", s.handleTrackCustomOrder)
	r.Post("/coupons/validate", s.handleValidateCoupon)

	return r
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.ServiceMeta{
		APIVersion:       "1.6.0",
		MinClientVersion: "1.0.0",
	})
}

func (s *Server) handleListWishlist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := make([]model.WishlistItem, 0, len(s.wishlist))
	for _, item := range s.wishlist {
		items = append(items, item)
	}
	s.mu.Unlock()

	// Oldest first, the way the storefront lists them.
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddWishlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID == "" {
		writeError(w, model.NewValidationError("productId", "required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[body.ProductID]
	if !ok {
		writeError(w, model.NewNotFoundError("product"))
		return
	}

	if existing, ok := s.wishlist[body.ProductID]; ok {
		// Idempotent: re-adding returns the existing item.
		writeJSON(w, http.StatusOK, existing)
		return
	}

	item := model.WishlistItem{
		ID:        uuid.NewString(),
		ProductID: body.ProductID,
		Product:   product,
		CreatedAt: time.Now().UTC(),
	}
	s.wishlist[body.ProductID] = item
	s.logger.Debug("wishlist item added", slog.String("product_id", body.ProductID))
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleRemoveWishlist(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wishlist[productID]; !ok {
		writeError(w, model.NewNotFoundError("wishlist item"))
		return
	}
	delete(s.wishlist, productID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTrackOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	s.mu.Lock()
	order, ok := s.standard[orderNumber]
	s.mu.Unlock()

	if !ok {
		writeError(w, model.NewNotFoundError("order"))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleTrackCustomOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	s.mu.Lock()
	order, ok := s.custom[orderNumber]
	s.mu.Unlock()

	if !ok {
		writeError(w, model.NewNotFoundError("custom order"))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string            `json:"code"`
		Cart model.CartSummary `json:"cart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		writeError(w, model.NewValidationError("code", "required"))
		return
	}

	s.mu.Lock()
	percent, ok := s.coupons[strings.ToLower(body.Code)]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, model.CouponValidation{
			Valid:  false,
			Code:   body.Code,
			Reason: "unknown or expired code",
		})
		return
	}
	writeJSON(w, http.StatusOK, model.CouponValidation{
		Valid:           true,
		Code:            body.Code,
		DiscountPercent: percent,
	})
}

// === Response Helpers ===

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err *model.APIError) {
	writeJSON(w, err.StatusCode, err)
}
