package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/MarcusAlienx/casanala/internal/handler"
	"github.com/MarcusAlienx/casanala/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type mockCheckoutService struct {
	quoteFn    func(ctx context.Context, cart service.Cart, orderType string) (service.Quote, error)
	checkoutFn func(ctx context.Context, cart service.Cart, form service.CheckoutForm) (service.Confirmation, error)
	tableFn    func(ctx context.Context, cart service.Cart, table, notes string) (database.Order, error)
	zone       *service.DeliveryZone
}

func (m *mockCheckoutService) Quote(ctx context.Context, cart service.Cart, orderType string) (service.Quote, error) {
	return m.quoteFn(ctx, cart, orderType)
}

func (m *mockCheckoutService) Checkout(ctx context.Context, cart service.Cart, form service.CheckoutForm) (service.Confirmation, error) {
	return m.checkoutFn(ctx, cart, form)
}

func (m *mockCheckoutService) PlaceTableOrder(ctx context.Context, cart service.Cart, table, notes string) (database.Order, error) {
	return m.tableFn(ctx, cart, table, notes)
}

func (m *mockCheckoutService) Zone() *service.DeliveryZone {
	return m.zone
}

func checkoutRouter(svc *mockCheckoutService) *chi.Mux {
	h := handler.NewCheckoutHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Post("/staff/waiter/orders", h.PlaceTableOrder)
	return r
}

func TestQuote(t *testing.T) {
	svc := &mockCheckoutService{quoteFn: func(_ context.Context, cart service.Cart, orderType string) (service.Quote, error) {
		if orderType != "domicilio" || cart.Count() != 3 {
			t.Errorf("got type=%s count=%d", orderType, cart.Count())
		}
		return service.Quote{
			Type:        enum.OrderTypeDelivery,
			Subtotal:    decimal.NewFromInt(76),
			DeliveryFee: decimal.NewFromInt(40),
			Total:       decimal.NewFromInt(116),
		}, nil
	}}

	rr := postJSON(t, checkoutRouter(svc), "/cart/quote", map[string]interface{}{
		"type": "domicilio",
		"items": []map[string]interface{}{
			{"menuItemId": "taco", "quantity": 2},
			{"menuItemId": "agua", "quantity": 1},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["total"] != "116" || resp["deliveryFee"] != "40" {
		t.Errorf("unexpected quote: %v", resp)
	}
}

func TestCheckout_Success(t *testing.T) {
	svc := &mockCheckoutService{checkoutFn: func(_ context.Context, cart service.Cart, form service.CheckoutForm) (service.Confirmation, error) {
		if form.Name != "Ana López" || form.Address.Street != "Av. Vallarta" || form.TimeWindow != "13:00-14:00" {
			t.Errorf("form: %+v", form)
		}
		if len(cart.Lines) != 1 || cart.Lines[0].MenuItemID != "taco" {
			t.Errorf("cart: %+v", cart)
		}
		return service.Confirmation{OrderID: "ord-9", Status: enum.OrderStatusPending, TimeWindow: form.TimeWindow}, nil
	}}

	rr := postJSON(t, checkoutRouter(svc), "/checkout", map[string]interface{}{
		"items":      []map[string]interface{}{{"menuItemId": "taco", "quantity": 1}},
		"name":       "Ana López",
		"phone":      "3312345678",
		"type":       "domicilio",
		"timeWindow": "13:00-14:00",
		"address": map[string]string{
			"street": "Av. Vallarta", "number": "100", "neighborhood": "Centro", "postalCode": "44100",
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["orderId"] != "ord-9" || resp["status"] != "pendiente" {
		t.Errorf("unexpected confirmation: %v", resp)
	}
}

func TestCheckout_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &service.ValidationError{Fields: map[string]string{"phone": "Ingresa un teléfono válido de al menos 10 dígitos."}}, http.StatusBadRequest},
		{"timeout", fmt.Errorf("create order: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"store", fmt.Errorf("list menu: %w", database.ErrNotFound), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockCheckoutService{checkoutFn: func(context.Context, service.Cart, service.CheckoutForm) (service.Confirmation, error) {
				return service.Confirmation{}, tc.err
			}}
			rr := postJSON(t, checkoutRouter(svc), "/checkout", map[string]interface{}{"name": "Ana"})
			if rr.Code != tc.status {
				t.Fatalf("status: got %d, want %d", rr.Code, tc.status)
			}
			if tc.status == http.StatusBadRequest {
				if fields := fieldsOf(t, decodeResponse(t, rr)); fields["phone"] == nil {
					t.Errorf("expected phone error, got %v", fields)
				}
			}
		})
	}
}

func TestPlaceTableOrder(t *testing.T) {
	svc := &mockCheckoutService{tableFn: func(_ context.Context, cart service.Cart, table, notes string) (database.Order, error) {
		if table != "7" || notes != "sin cebolla" || cart.Count() != 2 {
			t.Errorf("got table=%s notes=%s count=%d", table, notes, cart.Count())
		}
		o := testOrder("ord-7", enum.OrderTypePickup, enum.OrderStatusPending)
		o.Customer = database.Customer{Name: "Mesa 7", Table: "7"}
		return o, nil
	}}

	rr := postJSON(t, checkoutRouter(svc), "/staff/waiter/orders", map[string]interface{}{
		"table": "7",
		"notes": "sin cebolla",
		"items": []map[string]interface{}{{"menuItemId": "taco", "quantity": 2}},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	customer, _ := resp["customer"].(map[string]interface{})
	if customer["table"] != "7" {
		t.Errorf("customer: got %v", customer)
	}
}

func TestDeliveryZone(t *testing.T) {
	zone := &service.DeliveryZone{Center: service.Location{Lat: 20.6843, Lng: -103.3167}, RadiusKm: 10}
	r := checkoutRouter(&mockCheckoutService{zone: zone})

	rr := get(r, "/delivery-zone")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["radiusKm"] != float64(10) || resp["covered"] != nil {
		t.Errorf("unexpected zone: %v", resp)
	}

	rr = get(r, "/delivery-zone?lat=20.68&lng=-103.32")
	if resp := decodeResponse(t, rr); resp["covered"] != true {
		t.Errorf("nearby point should be covered: %v", resp)
	}

	rr = get(r, "/delivery-zone?lat=20.2966&lng=-103.1911")
	if resp := decodeResponse(t, rr); resp["covered"] != false {
		t.Errorf("distant point should not be covered: %v", resp)
	}

	for _, q := range []string{"?lat=abc&lng=1", "?lat=95&lng=0", "?lat=20.6"} {
		if rr := get(r, "/delivery-zone"+q); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want %d", q, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestDeliveryZone_NotConfigured(t *testing.T) {
	if rr := get(checkoutRouter(&mockCheckoutService{}), "/delivery-zone"); rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
