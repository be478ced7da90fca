package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

type orderItemDoc struct {
	MenuItemID string  `firestore:"menuItemId"`
	Name       string  `firestore:"name"`
	Quantity   int32   `firestore:"quantity"`
	Price      float64 `firestore:"price"`
}

type customerDoc struct {
	Name    string `firestore:"name"`
	Phone   string `firestore:"phone"`
	Address string `firestore:"address,omitempty"`
	Notes   string `firestore:"notes,omitempty"`
	Table   string `firestore:"table,omitempty"`
}

type orderDoc struct {
	Items      []orderItemDoc `firestore:"items"`
	Total      float64        `firestore:"total"`
	Type       string         `firestore:"type"`
	Status     string         `firestore:"status"`
	Customer   customerDoc    `firestore:"customer"`
	TimeWindow string         `firestore:"timeWindow,omitempty"`
	CreatedAt  time.Time      `firestore:"createdAt,serverTimestamp"`
	UpdatedAt  time.Time      `firestore:"updatedAt,serverTimestamp"`
}

func newOrderDoc(arg database.CreateOrderParams) orderDoc {
	items := make([]orderItemDoc, len(arg.Items))
	for i, it := range arg.Items {
		items[i] = orderItemDoc{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      toFloat(it.UnitPrice),
		}
	}
	return orderDoc{
		Items:  items,
		Total:  toFloat(arg.Total),
		Type:   string(arg.Type),
		Status: string(arg.Status),
		Customer: customerDoc{
			Name:    arg.Customer.Name,
			Phone:   arg.Customer.Phone,
			Address: arg.Customer.Address,
			Notes:   arg.Customer.Notes,
			Table:   arg.Customer.Table,
		},
		TimeWindow: arg.TimeWindow,
	}
}

func (d orderDoc) model(id string) database.Order {
	items := make([]database.OrderItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = database.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  fromFloat(it.Price),
		}
	}
	return database.Order{
		ID:     id,
		Items:  items,
		Total:  fromFloat(d.Total),
		Type:   enum.OrderType(d.Type),
		Status: enum.OrderStatus(d.Status),
		Customer: database.Customer{
			Name:    d.Customer.Name,
			Phone:   d.Customer.Phone,
			Address: d.Customer.Address,
			Notes:   d.Customer.Notes,
			Table:   d.Customer.Table,
		},
		TimeWindow: d.TimeWindow,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func orderFromSnapshot(snap *firestore.DocumentSnapshot) (database.Order, error) {
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return database.Order{}, fmt.Errorf("decode order %s: %w", snap.Ref.ID, err)
	}
	return d.model(snap.Ref.ID), nil
}

func (s *Store) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	ref, wr, err := s.client.Collection(ordersCollection).Add(ctx, newOrderDoc(arg))
	if err != nil {
		return database.Order{}, translate(err)
	}
	return createdOrder(ctx, ref.ID, arg, wr.UpdateTime, s.GetOrder, s.log), nil
}

// createdOrder re-reads a new order to pick up the server timestamps. The
// document is already stored, so a failed read falls back to the params and
// the commit time instead of failing the request.
func createdOrder(ctx context.Context, id string, arg database.CreateOrderParams, committed time.Time,
	read func(context.Context, string) (database.Order, error), log *zap.Logger) database.Order {
	o, err := read(ctx, id)
	if err == nil {
		return o
	}
	log.Warn("re-read created order", zap.String("order_id", id), zap.Error(err))
	return database.Order{
		ID:         id,
		Items:      arg.Items,
		Total:      arg.Total,
		Type:       arg.Type,
		Status:     arg.Status,
		Customer:   arg.Customer,
		TimeWindow: arg.TimeWindow,
		CreatedAt:  committed,
		UpdatedAt:  committed,
	}
}

func (s *Store) GetOrder(ctx context.Context, id string) (database.Order, error) {
	snap, err := s.client.Collection(ordersCollection).Doc(id).Get(ctx)
	if err != nil {
		return database.Order{}, translate(err)
	}
	return orderFromSnapshot(snap)
}

// ListOrders needs a composite index on (status, type, createdAt desc) when
// both filters are used.
func (s *Store) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	q := s.client.Collection(ordersCollection).Query
	if len(arg.Statuses) > 0 {
		statuses := make([]string, len(arg.Statuses))
		for i, st := range arg.Statuses {
			statuses[i] = string(st)
		}
		q = q.Where("status", "in", statuses)
	}
	if arg.Type != "" {
		q = q.Where("type", "==", string(arg.Type))
	}
	q = q.OrderBy("createdAt", firestore.Desc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var orders []database.Order
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, translate(err)
		}
		o, err := orderFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateOrderStatus applies the change in a transaction and reports
// database.ErrNotFound when the stored status is no longer ExpectedStatus.
func (s *Store) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	ref := s.client.Collection(ordersCollection).Doc(arg.ID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := snap.DataAt("status")
		if err != nil {
			return err
		}
		if current != string(arg.ExpectedStatus) {
			return errStatusMismatch
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(arg.Status)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if errors.Is(err, errStatusMismatch) {
		return database.Order{}, database.ErrNotFound
	}
	if err != nil {
		return database.Order{}, translate(err)
	}
	return s.GetOrder(ctx, arg.ID)
}
