// Package orders resolves opaque tracking tokens against the two
// order backends.
//
// Tracking links are handed to customers without any hint of which
// backend owns the order, so resolution probes both: the standard
// endpoint first (collisions in the shared link format resolve in its
// favor), then the custom-order endpoint. Both probes failing is a
// terminal not-found, not an I/O error.
package orders

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"shopengine/internal/model"
)

// OrderAPI is the slice of the storefront API the resolver needs.
type OrderAPI interface {
	TrackOrder(ctx context.Context, orderNumber string) (*model.StandardOrder, error)
	TrackCustomOrder(ctx context.Context, orderNumber string) (*model.CustomOrder, error)
}

// Resolver maps tracking tokens to tagged order lookups.
type Resolver struct {
	api    OrderAPI
	logger *slog.Logger
}

// NewResolver creates a resolver over the given backend client.
func NewResolver(api OrderAPI, logger *slog.Logger) *Resolver {
	return &Resolver{api: api, logger: logger}
}

// Resolve looks up a tracking token.
//
// The token is URL-decoded first; an empty token short-circuits to
// NotFound with zero network calls. Each backend gets a single
// attempt, strictly sequential, no internal retry; any caller-supplied
// deadline on ctx bounds the whole resolution. Failures from the
// standard endpoint are undifferentiated — not-found, timeout and
// validation errors all fall through to the custom endpoint the same
// way.
func (r *Resolver) Resolve(ctx context.Context, trackingToken string) (model.OrderLookup, error) {
	token := normalizeToken(trackingToken)
	if token == "" {
		return model.NotFoundLookup(), nil
	}

	standard, err := r.api.TrackOrder(ctx, token)
	if err == nil {
		return model.StandardLookup(standard), nil
	}
	r.logger.Debug("standard order lookup missed, trying custom",
		slog.String("token", token),
		slog.Any("error", err),
	)

	custom, err := r.api.TrackCustomOrder(ctx, token)
	if err == nil {
		return model.CustomLookup(custom), nil
	}
	r.logger.Debug("custom order lookup missed",
		slog.String("token", token),
		slog.Any("error", err),
	)

	return model.NotFoundLookup(), nil
}

// normalizeToken URL-decodes and trims the token. An undecodable token
// is used as-is; the backends will simply miss it.
func normalizeToken(token string) string {
	decoded, err := url.QueryUnescape(token)
	if err != nil {
		decoded = token
	}
	return strings.TrimSpace(decoded)
}
