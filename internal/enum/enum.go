package enum

import "fmt"

// ── Order lifecycle (CHECK constrained in DB) ──

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pendiente"
	OrderStatusPreparing      OrderStatus = "preparando"
	OrderStatusReadyPickup    OrderStatus = "listo_recoger"
	OrderStatusOutForDelivery OrderStatus = "en_camino"
	OrderStatusCompleted      OrderStatus = "completado"
	OrderStatusCancelled      OrderStatus = "cancelado"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReadyPickup,
	OrderStatusOutForDelivery,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) Valid() bool {
	_, err := ParseOrderStatus(string(s))
	return err == nil
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ── Fulfilment type ──

type OrderType string

const (
	OrderTypePickup   OrderType = "recoger"
	OrderTypeDelivery OrderType = "domicilio"
)

func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case OrderTypePickup, OrderTypeDelivery:
		return OrderType(s), nil
	}
	return "", fmt.Errorf("unknown order type %q", s)
}

func (t OrderType) Valid() bool {
	return t == OrderTypePickup || t == OrderTypeDelivery
}

// ReadyStatusFor is the status an order moves to when the kitchen marks it ready.
func ReadyStatusFor(t OrderType) OrderStatus {
	if t == OrderTypeDelivery {
		return OrderStatusOutForDelivery
	}
	return OrderStatusReadyPickup
}

// allowedTransitions maps a current status to the statuses it may move to.
// listo_recoger and en_camino are additionally gated by order type in CanTransition.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusReadyPickup, OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusReadyPickup:    {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition reports whether an order of type t may move from one status to another.
func CanTransition(t OrderType, from, to OrderStatus) bool {
	if to == OrderStatusReadyPickup && t != OrderTypePickup {
		return false
	}
	if to == OrderStatusOutForDelivery && t != OrderTypeDelivery {
		return false
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s for an order of type t.
func NextStatuses(t OrderType, s OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, next := range allowedTransitions[s] {
		if CanTransition(t, s, next) {
			out = append(out, next)
		}
	}
	return out
}

// ── Roles ──

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleKitchen  Role = "cocina"
	RoleWaiter   Role = "mesero"
	RoleCustomer Role = "cliente"
)

// DefaultRole is assigned to any identity without a readable profile.
const DefaultRole = RoleCustomer

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleKitchen, RoleWaiter, RoleCustomer:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
