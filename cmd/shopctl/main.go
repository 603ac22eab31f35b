// shopctl is a CLI tool for driving the commerce engine against a
// storefront. Each command performs a single operation, making it
// composable for scripts. Cart and wishlist state persist in a local
// snapshot database between invocations.
//
// Commands:
//
//	shopctl cart add -product ID -title T -price CENTS [-size S] [-color C] [-qty N]
//	shopctl cart list
//	shopctl cart remove -line <line-id>
//	shopctl cart qty -line <line-id> -n N
//	shopctl cart clear
//	shopctl coupon apply -code CODE [-server]
//	shopctl coupon remove
//	shopctl wishlist add -product ID
//	shopctl wishlist remove -product ID
//	shopctl wishlist list [-refresh]
//	shopctl track -order <tracking-token>
//
// Examples:
//
//	shopctl cart add -product p1 -title "Wool Scarf" -price 4500 -size M -color red
//	shopctl coupon apply -code SAVE10 -server
//	shopctl track -order ORD-1001
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"shopengine/internal/api"
	"shopengine/internal/model"
	"shopengine/internal/session"
	"shopengine/internal/storage"
)

// Global flags (apply to all commands)
var (
	storeURL string
	apiToken string
	dbPath   string
	quiet    bool
	noColor  bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorGreen, colorYellow, colorCyan, colorGray = "", "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "cart":
		runCart(args)
	case "coupon":
		runCoupon(args)
	case "wishlist":
		runWishlist(args)
	case "track":
		runTrack(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `shopctl - commerce engine CLI

Usage:
  shopctl <command> <subcommand> [options]

Commands:
  cart      Manage the local cart (add, list, remove, qty, clear)
  coupon    Apply or remove a coupon (apply -server for the authoritative check)
  wishlist  Manage the wishlist (add, remove, list)
  track     Resolve an order tracking token

Examples:
  # Add a variant and inspect the cart
  shopctl cart add -product p1 -title "Wool Scarf" -price 4500 -size M -color red
  shopctl cart list

  # Apply a coupon locally, then confirm with the server
  shopctl coupon apply -code SAVE10
  shopctl coupon apply -code SAVE10 -server

  # Like a product and pull server state
  shopctl wishlist add -product p2
  shopctl wishlist list -refresh

  # Track across both order backends
  shopctl track -order ORD-1001

Run 'shopctl <command> -h' for command-specific options.
`)
}

// addGlobalFlags registers the flags every subcommand shares.
func addGlobalFlags(fs *flag.FlagSet) {
	fs.StringVar(&storeURL, "store", envOr("SHOPCTL_STORE", "http://localhost:8081"), "storefront API base URL")
	fs.StringVar(&apiToken, "token", os.Getenv("SHOPCTL_TOKEN"), "bearer token for the storefront API")
	fs.StringVar(&dbPath, "db", envOr("SHOPCTL_DB", "shopengine.db"), "snapshot database path")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - minimal output")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// newSession builds the engine over the snapshot database. The caller
// owns the returned cleanup.
func newSession() (*session.Session, func()) {
	if noColor {
		disableColors()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	client := api.New(api.Config{BaseURL: storeURL, Token: apiToken}, logger)

	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		fatal("Failed to open snapshot database: %v", err)
	}

	return session.New(client, store, logger), func() { store.Close() }
}

func ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// =============================================================================
// CART COMMANDS
// =============================================================================

func runCart(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: shopctl cart <add|list|remove|qty|clear> [options]")
		os.Exit(1)
	}

	sub := args[0]
	args = args[1:]

	switch sub {
	case "add":
		runCartAdd(args)
	case "list":
		runCartList(args)
	case "remove":
		runCartRemove(args)
	case "qty":
		runCartQty(args)
	case "clear":
		runCartClear(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown cart subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runCartAdd(args []string) {
	fs := flag.NewFlagSet("cart add", flag.ExitOnError)
	addGlobalFlags(fs)

	var input model.CartLineInput
	fs.StringVar(&input.ProductID, "product", "", "Product ID (required)")
	fs.StringVar(&input.Title, "title", "", "Product title (required)")
	fs.Int64Var(&input.UnitPrice, "price", 0, "Unit price in cents (required)")
	fs.StringVar(&input.Currency, "currency", "USD", "Currency code")
	fs.StringVar(&input.Size, "size", "", "Size variant")
	fs.StringVar(&input.Color, "color", "", "Color variant")
	fs.IntVar(&input.Quantity, "qty", 1, "Quantity")
	fs.IntVar(&input.MaxQuantity, "max", 0, "Per-line quantity ceiling (0=none)")
	fs.Parse(args)

	if input.ProductID == "" || input.Title == "" || input.UnitPrice <= 0 {
		fs.Usage()
		os.Exit(1)
	}

	sess, cleanup := newSession()
	defer cleanup()

	sess.AddToCart(input)
	if !quiet {
		printSuccess("Added %s to cart", input.Title)
	}
	printCart(sess)
}

func runCartList(args []string) {
	fs := flag.NewFlagSet("cart list", flag.ExitOnError)
	addGlobalFlags(fs)
	fs.Parse(args)

	sess, cleanup := newSession()
	defer cleanup()
	printCart(sess)
}

func runCartRemove(args []string) {
	fs := flag.NewFlagSet("cart remove", flag.ExitOnError)
	addGlobalFlags(fs)
	var lineID string
	fs.StringVar(&lineID, "line", "", "Cart line ID (required)")
	fs.Parse(args)

	if lineID == "" {
		fs.Usage()
		os.Exit(1)
	}

	sess, cleanup := newSession()
	defer cleanup()

	sess.RemoveFromCart(lineID)
	printCart(sess)
}

func runCartQty(args []string) {
	fs := flag.NewFlagSet("cart qty", flag.ExitOnError)
	addGlobalFlags(fs)
	var lineID string
	var n int
	fs.StringVar(&lineID, "line", "", "Cart line ID (required)")
	fs.IntVar(&n, "n", 1, "New quantity")
	fs.Parse(args)

	if lineID == "" {
		fs.Usage()
		os.Exit(1)
	}

	sess, cleanup := newSession()
	defer cleanup()

	sess.SetCartQuantity(lineID, n)
	printCart(sess)
}

func runCartClear(args []string) {
	fs := flag.NewFlagSet("cart clear", flag.ExitOnError)
	addGlobalFlags(fs)
	fs.Parse(args)

	sess, cleanup := newSession()
	defer cleanup()

	sess.ClearCart()
	if !quiet {
		printSuccess("Cart cleared")
	}
}

func printCart(sess *session.Session) {
	lines := sess.CartLines()
	if quiet {
		for _, line := range lines {
			fmt.Printf("%s\t%d\t%d\n", line.ID, line.Quantity, line.UnitPrice*int64(line.Quantity))
		}
		return
	}

	if len(lines) == 0 {
		fmt.Println("Cart is empty")
		return
	}

	for _, line := range lines {
		variant := line.Size
		if line.Color != "" {
			if variant != "" {
				variant += "/"
			}
			variant += line.Color
		}
		fmt.Printf("  %s%s%s  %s", colorCyan, line.ID, colorReset, line.Title)
		if variant != "" {
			fmt.Printf(" (%s)", variant)
		}
		fmt.Printf("  x%d  %s\n", line.Quantity, model.FormatCents(line.UnitPrice*int64(line.Quantity), line.Currency))
	}

	if code, percent := sess.Coupon(); code != "" {
		fmt.Printf("  %sCoupon:%s %s (-%.0f%%)\n", colorYellow, colorReset, code, percent)
	}
	fmt.Printf("  Subtotal: %s\n", model.FormatCents(sess.Subtotal(), currencyOf(lines)))
	fmt.Printf("  %sTotal:    %s%s\n", colorGreen, model.FormatCents(sess.Total(), currencyOf(lines)), colorReset)
}

func currencyOf(lines []model.CartLine) string {
	if len(lines) > 0 {
		return lines[0].Currency
	}
	return "USD"
}

// =============================================================================
// COUPON COMMANDS
// =============================================================================

func runCoupon(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: shopctl coupon <apply|remove> [options]")
		os.Exit(1)
	}

	sub := args[0]
	args = args[1:]

	switch sub {
	case "apply":
		runCouponApply(args)
	case "remove":
		runCouponRemove(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown coupon subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runCouponApply(args []string) {
	fs := flag.NewFlagSet("coupon apply", flag.ExitOnError)
	addGlobalFlags(fs)
	var code string
	var server bool
	fs.StringVar(&code, "code", "", "Coupon code (required)")
	fs.BoolVar(&server, "server", false, "Validate with the storefront instead of the local table")
	fs.Parse(args)

	if code == "" {
		fs.Usage()
		os.Exit(1)
	}

	sess, cleanup := newSession()
	defer cleanup()

	if server {
		c, cancel := ctx()
		defer cancel()
		result, err := sess.ValidateCouponAuthoritative(c, code)
		if err != nil {
			fatal("Coupon validation failed: %v", err)
		}
		if !result.Valid {
			fmt.Printf("Coupon %s rejected: %s\n", code, result.Reason)
			os.Exit(1)
		}
		printSuccess("Coupon %s applied (-%.0f%%)", code, result.DiscountPercent)
	} else {
		if !sess.ApplyCoupon(code) {
			fmt.Printf("Coupon %s not in the local table; try -server\n", code)
			os.Exit(1)
		}
		_, percent := sess.Coupon()
		printSuccess("Coupon %s applied locally (-%.0f%%)", code, percent)
	}
	printCart(sess)
}

func runCouponRemove(args []string) {
	fs := flag.NewFlagSet("coupon remove", flag.ExitOnError)
	addGlobalFlags(fs)
	fs.Parse(args)

	sess, cleanup := newSession()
	defer cleanup()

	sess.RemoveCoupon()
	printCart(sess)
}

// =============================================================================
// WISHLIST COMMANDS
// =============================================================================

func runWishlist(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: shopctl wishlist <add|remove|list> [options]")
		os.Exit(1)
	}

	sub := args[0]
	args = args[1:]

	switch sub {
	case "add":
		runWishlistAdd(args)
	case "remove":
		runWishlistRemove(args)
	case "list":
		runWishlistList(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown wishlist subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runWishlistAdd(args []string) {
	fs := flag.NewFlagSet("wishlist add", flag.ExitOnError)
	addGlobalFlags(fs)
	var productID string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.Parse(args)

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	sess, cleanup := newSession()
	defer cleanup()

	c, cancel := ctx()
	defer cancel()
	if err := sess.AddToWishlist(c, productID); err != nil {
		fatal("Failed to add to wishlist: %v", err)
	}
	printSuccess("Added %s to wishlist", productID)
}

func runWishlistRemove(args []string) {
	fs := flag.NewFlagSet("wishlist remove", flag.ExitOnError)
	addGlobalFlags(fs)
	var productID string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.Parse(args)

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	sess, cleanup := newSession()
	defer cleanup()

	c, cancel := ctx()
	defer cancel()
	if err := sess.RemoveFromWishlist(c, productID); err != nil {
		fatal("Failed to remove from wishlist: %v", err)
	}
	printSuccess("Removed %s from wishlist", productID)
}

func runWishlistList(args []string) {
	fs := flag.NewFlagSet("wishlist list", flag.ExitOnError)
	addGlobalFlags(fs)
	var refresh bool
	fs.BoolVar(&refresh, "refresh", false, "Reconcile with the storefront first")
	fs.Parse(args)

	sess, cleanup := newSession()
	defer cleanup()

	if refresh {
		c, cancel := ctx()
		defer cancel()
		if err := sess.RefreshWishlist(c); err != nil {
			fatal("Failed to refresh wishlist: %v", err)
		}
	}

	items := sess.WishlistItems()
	if quiet {
		for _, item := range items {
			fmt.Println(item.ProductID)
		}
		return
	}
	if len(items) == 0 {
		fmt.Println("Wishlist is empty (try -refresh)")
		return
	}
	for _, item := range items {
		fmt.Printf("  %s%s%s  %s  %s\n", colorCyan, item.ProductID, colorReset,
			item.Product.Title, model.FormatCents(item.Product.UnitPrice, item.Product.Currency))
	}
}

// =============================================================================
// TRACK COMMAND
// =============================================================================

func runTrack(args []string) {
	fs := flag.NewFlagSet("track", flag.ExitOnError)
	addGlobalFlags(fs)
	var token string
	fs.StringVar(&token, "order", "", "Tracking token (required)")
	fs.Parse(args)

	if token == "" {
		fs.Usage()
		os.Exit(1)
	}

	sess, cleanup := newSession()
	defer cleanup()

	c, cancel := ctx()
	defer cancel()
	lookup, err := sess.TrackOrder(c, token)
	if err != nil {
		fatal("Tracking failed: %v", err)
	}

	if quiet {
		fmt.Println(lookup.Kind)
		return
	}

	switch lookup.Kind {
	case model.OrderKindStandard:
		o := lookup.Standard
		printSuccess("Order %s: %s", o.OrderNumber, o.Status)
		for _, item := range o.Items {
			fmt.Printf("  %s (%s/%s) x%d\n", item.ProductName, item.Color, item.Size, item.Quantity)
		}
		fmt.Printf("  %sTotal: %s%s\n", colorGreen, model.FormatCents(o.Total, o.Currency), colorReset)
	case model.OrderKindCustom:
		o := lookup.Custom
		printSuccess("Custom order %s: %s", o.OrderNumber, o.Status)
		fmt.Printf("  %s (%s, %s) x%d\n", o.ProductType, o.Color, o.Size, o.Quantity)
		if o.Details != "" {
			fmt.Printf("  %s%s%s\n", colorGray, o.Details, colorReset)
		}
	default:
		fmt.Printf("No order found for %q\n", token)
	}
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printSuccess(format string, args ...interface{}) {
	fmt.Printf("%s✓%s "+format+"\n", append([]interface{}{colorGreen, colorReset}, args...)...)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
