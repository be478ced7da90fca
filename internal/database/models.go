package database

import (
	"time"

	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/shopspring/decimal"
)

// OrderItem is a line snapshot taken when the order is placed. Later menu
// edits never change it.
type OrderItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int32           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"price"`
}

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Table   string `json:"table,omitempty"`
}

type Order struct {
	ID         string
	Items      []OrderItem
	Total      decimal.Decimal
	Type       enum.OrderType
	Status     enum.OrderStatus
	Customer   Customer
	TimeWindow string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type MenuItem struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type InventoryItem struct {
	ID                string
	Name              string
	Unit              string
	Stock             decimal.Decimal
	LowStockThreshold *decimal.Decimal
	Supplier          string
	LastUpdated       time.Time
}

// IsLowStock reports whether stock is at or below the configured threshold.
func (i InventoryItem) IsLowStock() bool {
	return i.LowStockThreshold != nil && i.Stock.LessThanOrEqual(*i.LowStockThreshold)
}

type DayHours struct {
	IsOpen bool   `json:"isOpen"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
}

type Promotion struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type SiteSettings struct {
	WeeklyHours map[string]DayHours
	Promotions  []Promotion
	UpdatedAt   time.Time
}

type User struct {
	ID             string
	Email          string
	HashedPassword string
	FullName       string
	Role           enum.Role
	IsActive       bool
	CreatedAt      time.Time
}
