package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const inventoryColumns = `id, name, unit, stock, low_stock_threshold, supplier, last_updated`

func scanInventoryItem(row pgx.Row) (InventoryItem, error) {
	var (
		it        InventoryItem
		stock     pgtype.Numeric
		threshold pgtype.Numeric
	)
	err := row.Scan(&it.ID, &it.Name, &it.Unit, &stock, &threshold, &it.Supplier, &it.LastUpdated)
	if err != nil {
		return InventoryItem{}, err
	}
	it.Stock = numericToDecimal(stock)
	it.LowStockThreshold = numericToOptional(threshold)
	return it, nil
}

const listInventoryItems = `-- name: ListInventoryItems :many
SELECT ` + inventoryColumns + ` FROM inventory_items ORDER BY name`

func (q *Queries) ListInventoryItems(ctx context.Context) ([]InventoryItem, error) {
	rows, err := q.db.Query(ctx, listInventoryItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const createInventoryItem = `-- name: CreateInventoryItem :one
INSERT INTO inventory_items (name, unit, stock, low_stock_threshold, supplier)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + inventoryColumns

type CreateInventoryItemParams struct {
	Name              string
	Unit              string
	Stock             decimal.Decimal
	LowStockThreshold *decimal.Decimal
	Supplier          string
}

func (q *Queries) CreateInventoryItem(ctx context.Context, arg CreateInventoryItemParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, createInventoryItem,
		arg.Name, arg.Unit, decimalToNumeric(arg.Stock), optionalNumeric(arg.LowStockThreshold), arg.Supplier)
	it, err := scanInventoryItem(row)
	return it, translate(err)
}

const updateInventoryStock = `-- name: UpdateInventoryStock :one
UPDATE inventory_items SET stock = $2, last_updated = now()
WHERE id = $1
RETURNING ` + inventoryColumns

type UpdateInventoryStockParams struct {
	ID    string
	Stock decimal.Decimal
}

func (q *Queries) UpdateInventoryStock(ctx context.Context, arg UpdateInventoryStockParams) (InventoryItem, error) {
	it, err := scanInventoryItem(q.db.QueryRow(ctx, updateInventoryStock, arg.ID, decimalToNumeric(arg.Stock)))
	return it, translate(err)
}

const deleteInventoryItem = `-- name: DeleteInventoryItem :one
DELETE FROM inventory_items WHERE id = $1 RETURNING id`

func (q *Queries) DeleteInventoryItem(ctx context.Context, id string) error {
	var deleted string
	return translate(q.db.QueryRow(ctx, deleteInventoryItem, id).Scan(&deleted))
}
