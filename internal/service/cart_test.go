package service

import (
	"errors"
	"testing"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/shopspring/decimal"
)

func testMenu() []database.MenuItem {
	return []database.MenuItem{
		{ID: "taco", Name: "Taco al pastor", Price: decimal.RequireFromString("25.50"), Category: "Tacos"},
		{ID: "agua", Name: "Agua de jamaica", Price: decimal.NewFromInt(30), Category: "Bebidas"},
	}
}

func TestCartOperations(t *testing.T) {
	var c Cart
	c.Add("taco")
	c.Add("taco")
	c.Add("agua")
	if c.Count() != 3 || len(c.Lines) != 2 {
		t.Fatalf("after adds: %+v", c.Lines)
	}

	c.Decrement("agua")
	if len(c.Lines) != 1 {
		t.Fatalf("decrement at 1 should remove the line: %+v", c.Lines)
	}

	c.Decrement("taco")
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("quantity = %d", c.Lines[0].Quantity)
	}

	c.SetQuantity("taco", 5)
	if c.Count() != 5 {
		t.Fatalf("count = %d", c.Count())
	}

	c.SetQuantity("taco", 0)
	if !c.IsEmpty() {
		t.Fatalf("set to zero should remove: %+v", c.Lines)
	}

	c.SetQuantity("agua", -3)
	c.Decrement("missing")
	c.Remove("missing")
	if !c.IsEmpty() {
		t.Fatalf("cart should stay empty: %+v", c.Lines)
	}
}

func TestPriceCart(t *testing.T) {
	cart := Cart{Lines: []CartLine{{MenuItemID: "taco", Quantity: 3}, {MenuItemID: "agua", Quantity: 1}}}

	q, err := PriceCart(cart, testMenu(), enum.OrderTypeDelivery, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("PriceCart: %v", err)
	}
	if q.Subtotal.StringFixed(2) != "106.50" {
		t.Errorf("subtotal = %s", q.Subtotal)
	}
	if q.DeliveryFee.StringFixed(2) != "40.00" || q.Total.StringFixed(2) != "146.50" {
		t.Errorf("fee = %s total = %s", q.DeliveryFee, q.Total)
	}
	if q.Lines[0].LineTotal.StringFixed(2) != "76.50" {
		t.Errorf("line total = %s", q.Lines[0].LineTotal)
	}

	q, err = PriceCart(cart, testMenu(), enum.OrderTypePickup, decimal.NewFromInt(40))
	if err != nil {
		t.Fatal(err)
	}
	if !q.DeliveryFee.IsZero() || q.Total.StringFixed(2) != "106.50" {
		t.Errorf("pickup fee = %s total = %s", q.DeliveryFee, q.Total)
	}
}

func TestPriceCartRejectsUnknownAndEmpty(t *testing.T) {
	_, err := PriceCart(Cart{}, testMenu(), enum.OrderTypePickup, decimal.Zero)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("empty cart: got %v", err)
	}

	cart := Cart{Lines: []CartLine{{MenuItemID: "pozole", Quantity: 1}, {MenuItemID: "taco", Quantity: 0}}}
	_, err = PriceCart(cart, testMenu(), enum.OrderTypePickup, decimal.Zero)
	fields := fieldErrors(t, err)
	if _, ok := fields["items[0].menuItemId"]; !ok {
		t.Errorf("fields = %v", fields)
	}
	if _, ok := fields["items[1].quantity"]; !ok {
		t.Errorf("fields = %v", fields)
	}
}
