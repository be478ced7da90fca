package docstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/shopspring/decimal"
)

type inventoryItemDoc struct {
	Name              string    `firestore:"name"`
	Unit              string    `firestore:"unit"`
	Stock             float64   `firestore:"stock"`
	LowStockThreshold *float64  `firestore:"lowStockThreshold,omitempty"`
	Supplier          string    `firestore:"supplier,omitempty"`
	LastUpdated       time.Time `firestore:"lastUpdated,serverTimestamp"`
}

func inventoryItemFromSnapshot(snap *firestore.DocumentSnapshot) (database.InventoryItem, error) {
	var d inventoryItemDoc
	if err := snap.DataTo(&d); err != nil {
		return database.InventoryItem{}, fmt.Errorf("decode inventory item %s: %w", snap.Ref.ID, err)
	}
	item := database.InventoryItem{
		ID:          snap.Ref.ID,
		Name:        d.Name,
		Unit:        d.Unit,
		Stock:       decimal.NewFromFloat(d.Stock),
		Supplier:    d.Supplier,
		LastUpdated: d.LastUpdated,
	}
	if d.LowStockThreshold != nil {
		t := decimal.NewFromFloat(*d.LowStockThreshold)
		item.LowStockThreshold = &t
	}
	return item, nil
}

func (s *Store) ListInventoryItems(ctx context.Context) ([]database.InventoryItem, error) {
	snaps, err := s.client.Collection(inventoryCollection).OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, translate(err)
	}
	items := make([]database.InventoryItem, 0, len(snaps))
	for _, snap := range snaps {
		it, err := inventoryItemFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *Store) getInventoryItem(ctx context.Context, id string) (database.InventoryItem, error) {
	snap, err := s.client.Collection(inventoryCollection).Doc(id).Get(ctx)
	if err != nil {
		return database.InventoryItem{}, translate(err)
	}
	return inventoryItemFromSnapshot(snap)
}

func (s *Store) CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error) {
	d := inventoryItemDoc{
		Name:     arg.Name,
		Unit:     arg.Unit,
		Stock:    arg.Stock.InexactFloat64(),
		Supplier: arg.Supplier,
	}
	if arg.LowStockThreshold != nil {
		t := arg.LowStockThreshold.InexactFloat64()
		d.LowStockThreshold = &t
	}
	ref, _, err := s.client.Collection(inventoryCollection).Add(ctx, d)
	if err != nil {
		return database.InventoryItem{}, translate(err)
	}
	return s.getInventoryItem(ctx, ref.ID)
}

func (s *Store) UpdateInventoryStock(ctx context.Context, arg database.UpdateInventoryStockParams) (database.InventoryItem, error) {
	_, err := s.client.Collection(inventoryCollection).Doc(arg.ID).Update(ctx, []firestore.Update{
		{Path: "stock", Value: arg.Stock.InexactFloat64()},
		{Path: "lastUpdated", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return database.InventoryItem{}, translate(err)
	}
	return s.getInventoryItem(ctx, arg.ID)
}

func (s *Store) DeleteInventoryItem(ctx context.Context, id string) error {
	_, err := s.client.Collection(inventoryCollection).Doc(id).Delete(ctx, firestore.Exists)
	return translate(err)
}
