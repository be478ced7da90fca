package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const menuItemColumns = `id, name, description, price, category, image_url, created_at, updated_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var (
		m     MenuItem
		price pgtype.Numeric
	)
	err := row.Scan(&m.ID, &m.Name, &m.Description, &price, &m.Category, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return MenuItem{}, err
	}
	m.Price = numericToDecimal(price)
	return m, nil
}

const listMenuItems = `-- name: ListMenuItems :many
SELECT ` + menuItemColumns + ` FROM menu_items ORDER BY category, name`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const getMenuItem = `-- name: GetMenuItem :one
SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

func (q *Queries) GetMenuItem(ctx context.Context, id string) (MenuItem, error) {
	m, err := scanMenuItem(q.db.QueryRow(ctx, getMenuItem, id))
	return m, translate(err)
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (name, description, price, category, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name, arg.Description, decimalToNumeric(arg.Price), arg.Category, arg.ImageURL)
	m, err := scanMenuItem(row)
	return m, translate(err)
}

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET name = $2, description = $3, price = $4, category = $5, image_url = $6, updated_at = now()
WHERE id = $1
RETURNING ` + menuItemColumns

type UpdateMenuItemParams struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID, arg.Name, arg.Description, decimalToNumeric(arg.Price), arg.Category, arg.ImageURL)
	m, err := scanMenuItem(row)
	return m, translate(err)
}

const deleteMenuItem = `-- name: DeleteMenuItem :one
DELETE FROM menu_items WHERE id = $1 RETURNING id`

func (q *Queries) DeleteMenuItem(ctx context.Context, id string) error {
	var deleted string
	return translate(q.db.QueryRow(ctx, deleteMenuItem, id).Scan(&deleted))
}
