package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/shopspring/decimal"
)

// Address is the structured delivery address collected at checkout.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	PostalCode   string `json:"postalCode"`
	References   string `json:"references,omitempty"`
}

// String renders the address as stored on the order.
func (a Address) String() string {
	s := fmt.Sprintf("%s #%s, Col. %s, CP %s",
		strings.TrimSpace(a.Street), strings.TrimSpace(a.Number),
		strings.TrimSpace(a.Neighborhood), strings.TrimSpace(a.PostalCode))
	if ref := strings.TrimSpace(a.References); ref != "" {
		s += ". Ref: " + ref
	}
	return s
}

// CheckoutForm is the customer-facing form submitted with the cart.
type CheckoutForm struct {
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Type       string    `json:"type"`
	TimeWindow string    `json:"timeWindow"`
	Address    Address   `json:"address"`
	Notes      string    `json:"notes,omitempty"`
	Location   *Location `json:"location,omitempty"`
}

// Validate checks the form fields. zone may be nil to skip the coverage check.
func (f CheckoutForm) Validate(zone *DeliveryZone) error {
	verr := &ValidationError{}

	t, err := enum.ParseOrderType(f.Type)
	if err != nil {
		verr.add("type", "Selecciona recoger o domicilio.")
	}
	if strings.TrimSpace(f.Name) == "" {
		verr.add("name", "El nombre es requerido.")
	}
	if !validPhone(normalizePhone(f.Phone)) {
		verr.add("phone", "Ingresa un teléfono válido de al menos 10 dígitos.")
	}
	if strings.TrimSpace(f.TimeWindow) == "" {
		verr.add("timeWindow", "Selecciona un horario.")
	}

	if t == enum.OrderTypeDelivery {
		if strings.TrimSpace(f.Address.Street) == "" {
			verr.add("address.street", "La calle es requerida.")
		}
		if strings.TrimSpace(f.Address.Number) == "" {
			verr.add("address.number", "El número es requerido.")
		}
		if strings.TrimSpace(f.Address.Neighborhood) == "" {
			verr.add("address.neighborhood", "La colonia es requerida.")
		}
		if strings.TrimSpace(f.Address.PostalCode) == "" {
			verr.add("address.postalCode", "El código postal es requerido.")
		}
		if f.Location != nil && zone != nil {
			if !f.Location.Valid() {
				verr.add("location", "Ubicación inválida.")
			} else if !zone.Contains(*f.Location) {
				verr.add("location", fmt.Sprintf("La dirección está fuera de la zona de entrega (%.0f km).", zone.RadiusKm))
			}
		}
	}
	return verr.errOrNil()
}

// MenuLister reads the current menu. Satisfied by *database.Queries and *docstore.Store.
type MenuLister interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
}

// OrderCreator is the part of OrderService checkout depends on.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (database.Order, error)
	FeeFor(t enum.OrderType) decimal.Decimal
}

// Confirmation summarises a placed order for the customer.
type Confirmation struct {
	OrderID    string           `json:"orderId"`
	Status     enum.OrderStatus `json:"status"`
	Quote      Quote            `json:"quote"`
	TimeWindow string           `json:"timeWindow"`
	Address    string           `json:"address,omitempty"`
}

// CheckoutService prices drafts against the live menu and turns them into orders.
type CheckoutService struct {
	orders OrderCreator
	menu   MenuLister
	zone   *DeliveryZone
}

// NewCheckoutService creates a CheckoutService. zone may be nil.
func NewCheckoutService(orders OrderCreator, menu MenuLister, zone *DeliveryZone) *CheckoutService {
	return &CheckoutService{orders: orders, menu: menu, zone: zone}
}

// Zone returns the configured delivery zone, or nil.
func (s *CheckoutService) Zone() *DeliveryZone {
	return s.zone
}

// Quote prices cart for the given order type.
func (s *CheckoutService) Quote(ctx context.Context, cart Cart, orderType string) (Quote, error) {
	t, err := enum.ParseOrderType(orderType)
	if err != nil {
		return Quote{}, &ValidationError{Fields: map[string]string{"type": "Selecciona recoger o domicilio."}}
	}
	menu, err := s.menu.ListMenuItems(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("list menu: %w", err)
	}
	return PriceCart(cart, menu, t, s.orders.FeeFor(t))
}

// Checkout validates the form, prices the cart and places the order.
// On failure nothing is persisted and the client keeps its draft.
func (s *CheckoutService) Checkout(ctx context.Context, cart Cart, form CheckoutForm) (Confirmation, error) {
	if err := form.Validate(s.zone); err != nil {
		return Confirmation{}, err
	}
	q, err := s.Quote(ctx, cart, form.Type)
	if err != nil {
		return Confirmation{}, err
	}

	var address string
	if q.Type == enum.OrderTypeDelivery {
		address = form.Address.String()
	}

	order, err := s.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: q.orderItems(),
		Total: q.Total,
		Type:  string(q.Type),
		Customer: CustomerRequest{
			Name:    form.Name,
			Phone:   form.Phone,
			Address: address,
			Notes:   form.Notes,
		},
		TimeWindow: form.TimeWindow,
	})
	if err != nil {
		return Confirmation{}, err
	}

	return Confirmation{
		OrderID:    order.ID,
		Status:     order.Status,
		Quote:      q,
		TimeWindow: order.TimeWindow,
		Address:    order.Customer.Address,
	}, nil
}

// PlaceTableOrder submits a waiter's draft for a dine-in table. It is
// recorded as a pickup order named after the table.
func (s *CheckoutService) PlaceTableOrder(ctx context.Context, cart Cart, table, notes string) (database.Order, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return database.Order{}, &ValidationError{Fields: map[string]string{"table": "El número de mesa es requerido."}}
	}
	q, err := s.Quote(ctx, cart, string(enum.OrderTypePickup))
	if err != nil {
		return database.Order{}, err
	}
	return s.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: q.orderItems(),
		Total: q.Total,
		Type:  string(enum.OrderTypePickup),
		Customer: CustomerRequest{
			Name:  "Mesa " + table,
			Notes: notes,
			Table: table,
		},
	})
}
