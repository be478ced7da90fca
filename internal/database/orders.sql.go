package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, items, total, order_type, status, customer_name, customer_phone,
	customer_address, customer_notes, table_label, time_window, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o     Order
		items []byte
		total pgtype.Numeric
	)
	err := row.Scan(
		&o.ID,
		&items,
		&total,
		&o.Type,
		&o.Status,
		&o.Customer.Name,
		&o.Customer.Phone,
		&o.Customer.Address,
		&o.Customer.Notes,
		&o.Customer.Table,
		&o.TimeWindow,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode items for order %s: %w", o.ID, err)
	}
	o.Total = numericToDecimal(total)
	return o, nil
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (items, total, order_type, status, customer_name, customer_phone,
	customer_address, customer_notes, table_label, time_window)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	Items      []OrderItem
	Total      decimal.Decimal
	Type       enum.OrderType
	Status     enum.OrderStatus
	Customer   Customer
	TimeWindow string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	items, err := json.Marshal(arg.Items)
	if err != nil {
		return Order{}, fmt.Errorf("encode items: %w", err)
	}
	row := q.db.QueryRow(ctx, createOrder,
		items,
		decimalToNumeric(arg.Total),
		arg.Type,
		arg.Status,
		arg.Customer.Name,
		arg.Customer.Phone,
		arg.Customer.Address,
		arg.Customer.Notes,
		arg.Customer.Table,
		arg.TimeWindow,
	)
	o, err := scanOrder(row)
	return o, translate(err)
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(q.db.QueryRow(ctx, getOrder, id))
	return o, translate(err)
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + ` FROM orders
WHERE (cardinality($1::text[]) = 0 OR status = ANY($1::text[]))
  AND ($2::text = '' OR order_type = $2::text)
ORDER BY created_at DESC`

// ListOrdersParams filters orders. Empty Statuses or Type means no filter on that field.
type ListOrdersParams struct {
	Statuses []enum.OrderStatus
	Type     enum.OrderType
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	statuses := make([]string, len(arg.Statuses))
	for i, s := range arg.Statuses {
		statuses[i] = string(s)
	}
	rows, err := q.db.Query(ctx, listOrders, statuses, string(arg.Type))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

// UpdateOrderStatusParams carries the status the caller last observed.
// No row is updated (ErrNotFound) when the stored status differs.
type UpdateOrderStatusParams struct {
	ID             string
	Status         enum.OrderStatus
	ExpectedStatus enum.OrderStatus
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.ExpectedStatus)
	o, err := scanOrder(row)
	return o, translate(err)
}
