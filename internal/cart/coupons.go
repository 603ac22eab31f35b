package cart

import "strings"

// localCoupons is the client-side discount table used for the fast
// pre-check in ApplyCoupon. Keys are lowercase; lookup is
// case-insensitive.
//
// This table must never be the final pricing authority. The server
// revalidates the code against the cart at order submission and its
// result wins.
var localCoupons = map[string]float64{
	"save10":    10,
	"welcome15": 15,
	"vip20":     20,
}

// lookupCoupon returns the discount percent for a known code.
func lookupCoupon(code string) (float64, bool) {
	percent, ok := localCoupons[strings.ToLower(strings.TrimSpace(code))]
	return percent, ok
}
