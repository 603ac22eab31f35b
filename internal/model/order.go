package model

// OrderKind tags an OrderLookup result. Exactly one kind per lookup;
// the two order shapes are never merged into one struct.
type OrderKind string

const (
	// OrderKindStandard is a catalog order found in the standard backend.
	OrderKindStandard OrderKind = "standard"
	// OrderKindCustom is a made-to-order record from the custom backend.
	OrderKindCustom OrderKind = "custom"
	// OrderKindNotFound means neither backend knows the tracking token.
	// Terminal; no further resolution is attempted.
	OrderKindNotFound OrderKind = "not_found"
)

// OrderLookup is the tagged result of resolving a tracking token.
// Consumers must switch on Kind; only the matching pointer is set.
type OrderLookup struct {
	Kind     OrderKind      `json:"kind"`
	Standard *StandardOrder `json:"standard,omitempty"`
	Custom   *CustomOrder   `json:"custom,omitempty"`
}

// StandardLookup wraps a standard order as a lookup result.
func StandardLookup(o *StandardOrder) OrderLookup {
	return OrderLookup{Kind: OrderKindStandard, Standard: o}
}

// CustomLookup wraps a custom order as a lookup result.
func CustomLookup(o *CustomOrder) OrderLookup {
	return OrderLookup{Kind: OrderKindCustom, Custom: o}
}

// NotFoundLookup is the terminal not-found result.
func NotFoundLookup() OrderLookup {
	return OrderLookup{Kind: OrderKindNotFound}
}

// StandardOrder is a regular catalog order as returned by the
// standard tracking endpoint.
type StandardOrder struct {
	OrderNumber string              `json:"orderNumber"`
	Status      string              `json:"status"`
	Total       int64               `json:"total"`
	Currency    string              `json:"currency"`
	Items       []StandardOrderItem `json:"items"`
}

// StandardOrderItem is one line of a standard order.
type StandardOrderItem struct {
	ProductName string `json:"productName"`
	Color       string `json:"color"`
	Size        string `json:"size"`
	Quantity    int    `json:"quantity"`
}

// CustomOrder is a made-to-order record from the custom backend.
// Structurally different from StandardOrder: a single product type
// with free-form details instead of catalog line items.
type CustomOrder struct {
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	Quantity    int    `json:"quantity"`
	ProductType string `json:"productType"`
	Color       string `json:"color,omitempty"`
	Size        string `json:"size,omitempty"`
	Details     string `json:"details,omitempty"`
}
