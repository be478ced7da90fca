package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/MarcusAlienx/casanala/internal/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Errors returned by the order service.
var (
	ErrValidation     = errors.New("validation failed")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrOrderNotFound  = errors.New("order not found")
	ErrStatusConflict = errors.New("order status changed, please retry")
)

// ValidationError lists every rejected field with a user-facing message.
// errors.Is(err, ErrValidation) holds for any *ValidationError.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// errOrNil returns nil when no field was rejected.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// TransitionError reports a status change the lifecycle does not allow.
type TransitionError struct {
	Type enum.OrderType
	From enum.OrderStatus
	To   enum.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition %s order from %s to %s", e.Type, e.From, e.To)
}

// OrderStore defines the store methods needed by the order service.
// Satisfied by *database.Queries and *docstore.Store.
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id string) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// CreateOrderRequest is the raw order payload as submitted by checkout or the waiter screen.
type CreateOrderRequest struct {
	Items      []OrderItemRequest
	Total      decimal.Decimal
	Type       string
	Customer   CustomerRequest
	TimeWindow string
}

type OrderItemRequest struct {
	MenuItemID string
	Name       string
	Quantity   int32
	UnitPrice  decimal.Decimal
}

type CustomerRequest struct {
	Name    string
	Phone   string
	Address string
	Notes   string
	// Table marks a dine-in order entered by a waiter.
	Table string
}

// OrderFilter narrows GetOrders. Zero values mean no filter.
type OrderFilter struct {
	Statuses []enum.OrderStatus
	Type     enum.OrderType
}

// OrderService owns the order lifecycle.
type OrderService struct {
	store       OrderStore
	notifier    events.Notifier
	deliveryFee decimal.Decimal
	log         *zap.Logger
	now         func() time.Time
}

// NewOrderService creates a new OrderService. notifier may be nil.
func NewOrderService(store OrderStore, notifier events.Notifier, deliveryFee decimal.Decimal, log *zap.Logger) *OrderService {
	return &OrderService{
		store:       store,
		notifier:    notifier,
		deliveryFee: deliveryFee,
		log:         log,
		now:         time.Now,
	}
}

// FeeFor returns the surcharge for an order type.
func (s *OrderService) FeeFor(t enum.OrderType) decimal.Decimal {
	if t == enum.OrderTypeDelivery {
		return s.deliveryFee
	}
	return decimal.Zero
}

// CreateOrder validates and persists a new order in pendiente.
// Two identical calls create two orders.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (database.Order, error) {
	params, err := s.validateCreate(req)
	if err != nil {
		return database.Order{}, err
	}

	order, err := s.store.CreateOrder(ctx, params)
	if err != nil {
		return database.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("type", string(order.Type)),
		zap.String("total", order.Total.StringFixed(2)))

	s.notify(ctx, events.OrderEvent{
		Kind:      events.KindOrderCreated,
		OrderID:   order.ID,
		OrderType: order.Type,
		Status:    order.Status,
		Views:     viewNames(ViewsFor(order.Type, order.Status)),
	})
	return order, nil
}

func (s *OrderService) validateCreate(req CreateOrderRequest) (database.CreateOrderParams, error) {
	verr := &ValidationError{}

	orderType, err := enum.ParseOrderType(req.Type)
	if err != nil {
		verr.add("type", "El tipo de pedido debe ser recoger o domicilio.")
	}

	if len(req.Items) == 0 {
		verr.add("items", "El pedido debe contener al menos un artículo.")
	}
	subtotal := decimal.Zero
	items := make([]database.OrderItem, 0, len(req.Items))
	for i, it := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.Name) == "" {
			verr.add(field+".name", "El nombre del artículo es requerido.")
		}
		if it.Quantity < 1 {
			verr.add(field+".quantity", "La cantidad debe ser al menos 1.")
		}
		if !it.UnitPrice.IsPositive() {
			verr.add(field+".price", "El precio debe ser positivo.")
		}
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt32(it.Quantity)))
		items = append(items, database.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       strings.TrimSpace(it.Name),
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
	}

	customer := database.Customer{
		Name:    strings.TrimSpace(req.Customer.Name),
		Phone:   normalizePhone(req.Customer.Phone),
		Address: strings.TrimSpace(req.Customer.Address),
		Notes:   strings.TrimSpace(req.Customer.Notes),
		Table:   strings.TrimSpace(req.Customer.Table),
	}
	if customer.Table != "" && customer.Name == "" {
		customer.Name = "Mesa " + customer.Table
	}
	if customer.Name == "" {
		verr.add("customer.name", "El nombre es requerido.")
	}
	// Waiter orders carry a table instead of a phone.
	if customer.Table == "" && !validPhone(customer.Phone) {
		verr.add("customer.phone", "El teléfono debe tener al menos 10 dígitos.")
	}

	if !req.Total.IsPositive() {
		verr.add("total", "El total debe ser positivo.")
	}

	// Checked separately from the generic rules so the message is specific.
	if orderType == enum.OrderTypeDelivery && customer.Address == "" {
		verr.add("customer.address", "La dirección es requerida para pedidos a domicilio.")
	}

	if len(verr.Fields) == 0 {
		expected := subtotal.Add(s.FeeFor(orderType)).Round(2)
		if !req.Total.Round(2).Equal(expected) {
			verr.add("total", fmt.Sprintf("El total no coincide con los artículos (esperado %s).", expected.StringFixed(2)))
		}
	}

	if err := verr.errOrNil(); err != nil {
		return database.CreateOrderParams{}, err
	}

	return database.CreateOrderParams{
		Items:      items,
		Total:      req.Total.Round(2),
		Type:       orderType,
		Status:     enum.OrderStatusPending,
		Customer:   customer,
		TimeWindow: strings.TrimSpace(req.TimeWindow),
	}, nil
}

// GetOrders lists orders matching filter, newest first.
func (s *OrderService) GetOrders(ctx context.Context, filter OrderFilter) ([]database.Order, error) {
	orders, err := s.store.ListOrders(ctx, database.ListOrdersParams{
		Statuses: filter.Statuses,
		Type:     filter.Type,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (database.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// UpdateOrderStatus moves an order to status if the lifecycle allows it.
// The write is conditional on the status that was read, so a concurrent
// change yields ErrStatusConflict instead of a lost update.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (database.Order, error) {
	next, err := enum.ParseOrderStatus(status)
	if err != nil {
		return database.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.transition(ctx, id, func(database.Order) enum.OrderStatus { return next })
}

// StartPreparing moves a pendiente order to preparando.
func (s *OrderService) StartPreparing(ctx context.Context, id string) (database.Order, error) {
	return s.transition(ctx, id, func(database.Order) enum.OrderStatus { return enum.OrderStatusPreparing })
}

// MarkReady moves a preparando order to listo_recoger or en_camino depending on its type.
func (s *OrderService) MarkReady(ctx context.Context, id string) (database.Order, error) {
	return s.transition(ctx, id, func(o database.Order) enum.OrderStatus { return enum.ReadyStatusFor(o.Type) })
}

func (s *OrderService) Complete(ctx context.Context, id string) (database.Order, error) {
	return s.transition(ctx, id, func(database.Order) enum.OrderStatus { return enum.OrderStatusCompleted })
}

func (s *OrderService) Cancel(ctx context.Context, id string) (database.Order, error) {
	return s.transition(ctx, id, func(database.Order) enum.OrderStatus { return enum.OrderStatusCancelled })
}

func (s *OrderService) transition(ctx context.Context, id string, target func(database.Order) enum.OrderStatus) (database.Order, error) {
	current, err := s.GetOrder(ctx, id)
	if err != nil {
		return database.Order{}, err
	}

	next := target(current)
	if !enum.CanTransition(current.Type, current.Status, next) {
		return database.Order{}, &TransitionError{Type: current.Type, From: current.Status, To: next}
	}

	updated, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:             id,
		Status:         next,
		ExpectedStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Order{}, ErrStatusConflict
		}
		return database.Order{}, fmt.Errorf("update order status: %w", err)
	}

	s.log.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)))

	s.notify(ctx, events.OrderEvent{
		Kind:           events.KindOrderStatusChanged,
		OrderID:        id,
		OrderType:      updated.Type,
		Status:         updated.Status,
		PreviousStatus: current.Status,
		Views:          viewNames(ViewsFor(updated.Type, current.Status, updated.Status)),
	})
	return updated, nil
}

// notify never fails the caller; the order is already persisted.
func (s *OrderService) notify(ctx context.Context, e events.OrderEvent) {
	if s.notifier == nil {
		return
	}
	e.OccurredAt = s.now()
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.log.Warn("order notification failed",
			zap.String("order_id", e.OrderID),
			zap.String("type", string(e.Kind)),
			zap.Error(err))
	}
}

func normalizePhone(p string) string {
	return strings.Join(strings.Fields(p), "")
}

func validPhone(p string) bool {
	if len(p) < 10 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
