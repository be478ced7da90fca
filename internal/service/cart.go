package service

import (
	"fmt"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/shopspring/decimal"
)

// CartLine is one menu item in a draft order.
type CartLine struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int32  `json:"quantity"`
}

// Cart is a client-held draft. The server never stores it; handlers receive
// it with each quote or checkout request.
type Cart struct {
	Lines []CartLine `json:"items"`
}

func (c *Cart) index(id string) int {
	for i, l := range c.Lines {
		if l.MenuItemID == id {
			return i
		}
	}
	return -1
}

// Add puts one more unit of the item in the cart.
func (c *Cart) Add(id string) {
	if i := c.index(id); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, CartLine{MenuItemID: id, Quantity: 1})
}

// Decrement removes one unit; the line disappears at zero.
func (c *Cart) Decrement(id string) {
	i := c.index(id)
	if i < 0 {
		return
	}
	if c.Lines[i].Quantity <= 1 {
		c.Remove(id)
		return
	}
	c.Lines[i].Quantity--
}

func (c *Cart) Remove(id string) {
	if i := c.index(id); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// SetQuantity replaces a line's quantity; q <= 0 removes the line.
func (c *Cart) SetQuantity(id string, q int32) {
	if q <= 0 {
		c.Remove(id)
		return
	}
	if i := c.index(id); i >= 0 {
		c.Lines[i].Quantity = q
		return
	}
	c.Lines = append(c.Lines, CartLine{MenuItemID: id, Quantity: q})
}

// Count is the total number of units.
func (c Cart) Count() int32 {
	var n int32
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return c.Count() == 0
}

// PricedLine is a cart line resolved against the current menu.
type PricedLine struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int32           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"price"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
}

type Quote struct {
	Type        enum.OrderType  `json:"type"`
	Lines       []PricedLine    `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// PriceCart resolves every line against menu. Unknown items and non-positive
// quantities are reported per line.
func PriceCart(cart Cart, menu []database.MenuItem, t enum.OrderType, deliveryFee decimal.Decimal) (Quote, error) {
	byID := make(map[string]database.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	verr := &ValidationError{}
	if cart.IsEmpty() {
		verr.add("items", "El carrito está vacío.")
	}

	q := Quote{Type: t, Lines: make([]PricedLine, 0, len(cart.Lines)), Subtotal: decimal.Zero, DeliveryFee: decimal.Zero}
	for i, l := range cart.Lines {
		field := fmt.Sprintf("items[%d]", i)
		if l.Quantity < 1 {
			verr.add(field+".quantity", "La cantidad debe ser al menos 1.")
			continue
		}
		item, ok := byID[l.MenuItemID]
		if !ok {
			verr.add(field+".menuItemId", "El artículo ya no está disponible en el menú.")
			continue
		}
		line := item.Price.Mul(decimal.NewFromInt32(l.Quantity))
		q.Lines = append(q.Lines, PricedLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   l.Quantity,
			UnitPrice:  item.Price,
			LineTotal:  line,
		})
		q.Subtotal = q.Subtotal.Add(line)
	}
	if err := verr.errOrNil(); err != nil {
		return Quote{}, err
	}

	if t == enum.OrderTypeDelivery {
		q.DeliveryFee = deliveryFee
	}
	q.Total = q.Subtotal.Add(q.DeliveryFee)
	return q, nil
}

// orderItems converts a quote into the order payload lines.
func (q Quote) orderItems() []OrderItemRequest {
	items := make([]OrderItemRequest, len(q.Lines))
	for i, l := range q.Lines {
		items[i] = OrderItemRequest{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
		}
	}
	return items
}
