// MCP surface for the commerce session using the official MCP Go SDK.
// Exposes the facade operations as tools so shopping agents can drive
// the same cart, wishlist and tracking flows the UI does.
package session

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"shopengine/internal/model"
)

// === Tool Input/Output Types ===

// CartAddInput is the input schema for the cart_add_item tool.
type CartAddInput struct {
	ProductID   string `json:"product_id" jsonschema:"product ID,required"`
	Title       string `json:"title" jsonschema:"product title,required"`
	UnitPrice   int64  `json:"unit_price" jsonschema:"unit price in cents,required"`
	Currency    string `json:"currency" jsonschema:"ISO currency code,required"`
	Size        string `json:"size" jsonschema:"variant size"`
	Color       string `json:"color" jsonschema:"variant color"`
	Quantity    int    `json:"quantity" jsonschema:"quantity to add,required"`
	MaxQuantity int    `json:"max_quantity,omitempty" jsonschema:"stock ceiling, 0 when unknown"`
}

// CartLineRefInput identifies an existing cart line.
type CartLineRefInput struct {
	LineID string `json:"line_id" jsonschema:"cart line ID,required"`
}

// CartSetQuantityInput is the input schema for cart_set_quantity.
type CartSetQuantityInput struct {
	LineID   string `json:"line_id" jsonschema:"cart line ID,required"`
	Quantity int    `json:"quantity" jsonschema:"new quantity, minimum 1,required"`
}

// CouponInput is the input schema for cart_apply_coupon.
type CouponInput struct {
	Code string `json:"code" jsonschema:"coupon code,required"`
}

// WishlistInput is the input schema for the wishlist tools.
type WishlistInput struct {
	ProductID string `json:"product_id" jsonschema:"product ID,required"`
}

// TrackInput is the input schema for order_track.
type TrackInput struct {
	TrackingToken string `json:"tracking_token" jsonschema:"order tracking token,required"`
}

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}

// CartView is the cart state returned by every cart tool.
type CartView struct {
	Lines           []model.CartLine `json:"lines"`
	CouponCode      string           `json:"coupon_code,omitempty"`
	DiscountPercent float64          `json:"discount_percent,omitempty"`
	Subtotal        int64            `json:"subtotal"`
	Total           int64            `json:"total"`
	ItemCount       int              `json:"item_count"`
}

// CouponResult reports a coupon application outcome.
type CouponResult struct {
	Applied bool     `json:"applied"`
	Reason  string   `json:"reason,omitempty"`
	Cart    CartView `json:"cart"`
}

// WishlistView is the wishlist state returned by the wishlist tools.
type WishlistView struct {
	ProductIDs []string             `json:"product_ids"`
	Items      []model.WishlistItem `json:"items,omitempty"`
}

// NewMCPServer creates an MCP server with the session tools registered.
func (s *Session) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "shopengine",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Commerce session for the storefront. Use the cart tools to " +
				"build an order, the wishlist tools to track liked products, and " +
				"order_track to look up an existing order by its tracking token.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_add_item",
		Description: "Add a product variant to the cart. Repeated adds of the same variant merge and saturate at the stock ceiling.",
	}, s.mcpCartAdd)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_remove_item",
		Description: "Remove a cart line by its ID.",
	}, s.mcpCartRemove)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_set_quantity",
		Description: "Set the quantity of an existing cart line.",
	}, s.mcpCartSetQuantity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_clear",
		Description: "Empty the cart and remove any applied coupon.",
	}, s.mcpCartClear)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_view",
		Description: "Get the current cart with subtotal, total and item count.",
	}, s.mcpCartView)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_apply_coupon",
		Description: "Validate a coupon with the storefront and apply it to the cart. The server verdict is authoritative.",
	}, s.mcpApplyCoupon)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wishlist_add",
		Description: "Add a product to the wishlist.",
	}, s.mcpWishlistAdd)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wishlist_remove",
		Description: "Remove a product from the wishlist.",
	}, s.mcpWishlistRemove)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wishlist_view",
		Description: "List the wishlist contents.",
	}, s.mcpWishlistView)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "order_track",
		Description: "Look up an order by tracking token. Resolves standard orders first, then custom-made orders.",
	}, s.mcpOrderTrack)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (s *Session) NewMCPHandler() http.Handler {
	server := s.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (s *Session) mcpCartAdd(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartAddInput,
) (*mcp.CallToolResult, CartView, error) {
	s.AddToCart(model.CartLineInput{
		ProductID:   input.ProductID,
		Title:       input.Title,
		UnitPrice:   input.UnitPrice,
		Currency:    input.Currency,
		Size:        input.Size,
		Color:       input.Color,
		Quantity:    input.Quantity,
		MaxQuantity: input.MaxQuantity,
	})
	return nil, s.cartView(), nil
}

func (s *Session) mcpCartRemove(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartLineRefInput,
) (*mcp.CallToolResult, CartView, error) {
	s.RemoveFromCart(input.LineID)
	return nil, s.cartView(), nil
}

func (s *Session) mcpCartSetQuantity(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartSetQuantityInput,
) (*mcp.CallToolResult, CartView, error) {
	s.SetCartQuantity(input.LineID, input.Quantity)
	return nil, s.cartView(), nil
}

func (s *Session) mcpCartClear(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, CartView, error) {
	s.ClearCart()
	return nil, s.cartView(), nil
}

func (s *Session) mcpCartView(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, CartView, error) {
	return nil, s.cartView(), nil
}

func (s *Session) mcpApplyCoupon(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CouponInput,
) (*mcp.CallToolResult, CouponResult, error) {
	result, err := s.ValidateCouponAuthoritative(ctx, input.Code)
	if err != nil {
		return nil, CouponResult{}, err
	}
	return nil, CouponResult{
		Applied: result.Valid,
		Reason:  result.Reason,
		Cart:    s.cartView(),
	}, nil
}

func (s *Session) mcpWishlistAdd(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input WishlistInput,
) (*mcp.CallToolResult, WishlistView, error) {
	if err := s.AddToWishlist(ctx, input.ProductID); err != nil {
		return nil, WishlistView{}, err
	}
	return nil, s.wishlistView(), nil
}

func (s *Session) mcpWishlistRemove(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input WishlistInput,
) (*mcp.CallToolResult, WishlistView, error) {
	if err := s.RemoveFromWishlist(ctx, input.ProductID); err != nil {
		return nil, WishlistView{}, err
	}
	return nil, s.wishlistView(), nil
}

func (s *Session) mcpWishlistView(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, WishlistView, error) {
	return nil, s.wishlistView(), nil
}

func (s *Session) mcpOrderTrack(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input TrackInput,
) (*mcp.CallToolResult, model.OrderLookup, error) {
	lookup, err := s.TrackOrder(ctx, input.TrackingToken)
	if err != nil {
		return nil, model.OrderLookup{}, err
	}
	return nil, lookup, nil
}

// === View Builders ===

func (s *Session) cartView() CartView {
	code, percent := s.Coupon()
	return CartView{
		Lines:           s.CartLines(),
		CouponCode:      code,
		DiscountPercent: percent,
		Subtotal:        s.Subtotal(),
		Total:           s.Total(),
		ItemCount:       s.ItemCount(),
	}
}

func (s *Session) wishlistView() WishlistView {
	return WishlistView{
		ProductIDs: s.wishlist.ProductIDs(),
		Items:      s.WishlistItems(),
	}
}
