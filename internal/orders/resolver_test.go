package orders

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"shopengine/internal/model"
)

// mockOrderAPI records the order of backend calls.
type mockOrderAPI struct {
	standardFn func(orderNumber string) (*model.StandardOrder, error)
	customFn   func(orderNumber string) (*model.CustomOrder, error)
	calls      []string
}

func (m *mockOrderAPI) TrackOrder(_ context.Context, orderNumber string) (*model.StandardOrder, error) {
	m.calls = append(m.calls, "standard:"+orderNumber)
	if m.standardFn != nil {
		return m.standardFn(orderNumber)
	}
	return nil, model.NewNotFoundError("order")
}

func (m *mockOrderAPI) TrackCustomOrder(_ context.Context, orderNumber string) (*model.CustomOrder, error) {
	m.calls = append(m.calls, "custom:"+orderNumber)
	if m.customFn != nil {
		return m.customFn(orderNumber)
	}
	return nil, model.NewNotFoundError("custom order")
}

func newTestResolver(api *mockOrderAPI) *Resolver {
	return NewResolver(api, slog.Default())
}

func TestResolve_StandardHitStopsThere(t *testing.T) {
	api := &mockOrderAPI{
		standardFn: func(orderNumber string) (*model.StandardOrder, error) {
			return &model.StandardOrder{OrderNumber: orderNumber, Status: "shipped"}, nil
		},
	}
	resolver := newTestResolver(api)

	result, err := resolver.Resolve(context.Background(), "ORD-1001")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Kind != model.OrderKindStandard {
		t.Errorf("Kind = %s, want %s", result.Kind, model.OrderKindStandard)
	}
	if result.Standard == nil || result.Standard.Status != "shipped" {
		t.Errorf("Standard = %+v, want shipped order", result.Standard)
	}
	if result.Custom != nil {
		t.Error("Custom must be nil on a standard hit")
	}

	// The custom backend is never probed on a standard hit.
	if len(api.calls) != 1 || api.calls[0] != "standard:ORD-1001" {
		t.Errorf("calls = %v, want [standard:ORD-1001]", api.calls)
	}
}

func TestResolve_FallsBackToCustom(t *testing.T) {
	api := &mockOrderAPI{
		customFn: func(orderNumber string) (*model.CustomOrder, error) {
			return &model.CustomOrder{OrderNumber: orderNumber, Status: "in_production", ProductType: "blanket"}, nil
		},
	}
	resolver := newTestResolver(api)

	result, err := resolver.Resolve(context.Background(), "CUS-7")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Kind != model.OrderKindCustom {
		t.Errorf("Kind = %s, want %s", result.Kind, model.OrderKindCustom)
	}
	if result.Custom == nil || result.Custom.ProductType != "blanket" {
		t.Errorf("Custom = %+v, want blanket order", result.Custom)
	}

	// Standard is always queried before custom.
	want := []string{"standard:CUS-7", "custom:CUS-7"}
	if len(api.calls) != 2 || api.calls[0] != want[0] || api.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
}

func TestResolve_NonNotFoundFailureAlsoFallsThrough(t *testing.T) {
	// Timeouts and validation errors from the standard endpoint are
	// treated the same as a miss.
	api := &mockOrderAPI{
		standardFn: func(orderNumber string) (*model.StandardOrder, error) {
			return nil, model.NewUpstreamError("storefront", errors.New("timeout"))
		},
		customFn: func(orderNumber string) (*model.CustomOrder, error) {
			return &model.CustomOrder{OrderNumber: orderNumber, Status: "pending"}, nil
		},
	}
	resolver := newTestResolver(api)

	result, err := resolver.Resolve(context.Background(), "X-1")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Kind != model.OrderKindCustom {
		t.Errorf("Kind = %s, want %s", result.Kind, model.OrderKindCustom)
	}
}

func TestResolve_BothMissIsTerminalNotFound(t *testing.T) {
	api := &mockOrderAPI{}
	resolver := newTestResolver(api)

	result, err := resolver.Resolve(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Resolve() error: %v, exhaustion is not an error", err)
	}
	if result.Kind != model.OrderKindNotFound {
		t.Errorf("Kind = %s, want %s", result.Kind, model.OrderKindNotFound)
	}
	if len(api.calls) != 2 {
		t.Errorf("calls = %v, want both backends probed once", api.calls)
	}
}

func TestResolve_EmptyTokenSkipsNetwork(t *testing.T) {
	api := &mockOrderAPI{}
	resolver := newTestResolver(api)

	for _, token := range []string{"", "   ", "%20%20"} {
		result, err := resolver.Resolve(context.Background(), token)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", token, err)
		}
		if result.Kind != model.OrderKindNotFound {
			t.Errorf("Resolve(%q).Kind = %s, want %s", token, result.Kind, model.OrderKindNotFound)
		}
	}
	if len(api.calls) != 0 {
		t.Errorf("calls = %v, want zero network calls for empty tokens", api.calls)
	}
}

func TestResolve_URLDecodesToken(t *testing.T) {
	api := &mockOrderAPI{
		standardFn: func(orderNumber string) (*model.StandardOrder, error) {
			if orderNumber == "ORD 1001" {
				return &model.StandardOrder{OrderNumber: orderNumber}, nil
			}
			return nil, model.NewNotFoundError("order")
		},
	}
	resolver := newTestResolver(api)

	result, err := resolver.Resolve(context.Background(), "ORD%201001")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Kind != model.OrderKindStandard {
		t.Errorf("Kind = %s, want decoded token to hit", result.Kind)
	}
}
