package service

import (
	"context"
	"fmt"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
)

// View is a role-scoped projection of the order collection.
type View string

const (
	ViewKitchen  View = "kitchen"
	ViewDelivery View = "delivery"
	ViewPickup   View = "pickup"
)

// Views lists every staff view.
var Views = []View{ViewKitchen, ViewDelivery, ViewPickup}

func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Filter is the store query behind the view.
func (v View) Filter() OrderFilter {
	switch v {
	case ViewKitchen:
		return OrderFilter{Statuses: []enum.OrderStatus{enum.OrderStatusPending, enum.OrderStatusPreparing}}
	case ViewDelivery:
		return OrderFilter{Type: enum.OrderTypeDelivery}
	case ViewPickup:
		return OrderFilter{
			Type:     enum.OrderTypePickup,
			Statuses: []enum.OrderStatus{enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReadyPickup},
		}
	}
	return OrderFilter{}
}

// Includes reports whether an order with the given type and status appears in the view.
func (v View) Includes(t enum.OrderType, s enum.OrderStatus) bool {
	f := v.Filter()
	if f.Type != "" && f.Type != t {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// ViewsFor returns the views an order belongs to in any of the given statuses.
// Passing the status before and after a change yields every view that must refresh.
func ViewsFor(t enum.OrderType, statuses ...enum.OrderStatus) []View {
	var out []View
	for _, v := range Views {
		for _, s := range statuses {
			if v.Includes(t, s) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func viewNames(vs []View) []string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = string(v)
	}
	return names
}

// KitchenBoard splits the kitchen view into its two columns.
type KitchenBoard struct {
	Pending   []database.Order
	Preparing []database.Order
}

// ListView loads the orders of a view, newest first. Views are read on
// request and never cached.
func (s *OrderService) ListView(ctx context.Context, v View) ([]database.Order, error) {
	return s.GetOrders(ctx, v.Filter())
}

func (s *OrderService) KitchenBoard(ctx context.Context) (KitchenBoard, error) {
	orders, err := s.ListView(ctx, ViewKitchen)
	if err != nil {
		return KitchenBoard{}, err
	}
	board := KitchenBoard{
		Pending:   []database.Order{},
		Preparing: []database.Order{},
	}
	for _, o := range orders {
		switch o.Status {
		case enum.OrderStatusPending:
			board.Pending = append(board.Pending, o)
		case enum.OrderStatusPreparing:
			board.Preparing = append(board.Preparing, o)
		}
	}
	return board, nil
}
