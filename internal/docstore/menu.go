package docstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MarcusAlienx/casanala/internal/database"
)

type menuItemDoc struct {
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	Price       float64   `firestore:"price"`
	Category    string    `firestore:"category"`
	ImageURL    string    `firestore:"imageUrl,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `firestore:"updatedAt,serverTimestamp"`
}

func menuItemFromSnapshot(snap *firestore.DocumentSnapshot) (database.MenuItem, error) {
	var d menuItemDoc
	if err := snap.DataTo(&d); err != nil {
		return database.MenuItem{}, fmt.Errorf("decode menu item %s: %w", snap.Ref.ID, err)
	}
	return database.MenuItem{
		ID:          snap.Ref.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       fromFloat(d.Price),
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func (s *Store) ListMenuItems(ctx context.Context) ([]database.MenuItem, error) {
	snaps, err := s.client.Collection(menuCollection).
		OrderBy("category", firestore.Asc).
		OrderBy("name", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, translate(err)
	}
	items := make([]database.MenuItem, 0, len(snaps))
	for _, snap := range snaps {
		m, err := menuItemFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (database.MenuItem, error) {
	snap, err := s.client.Collection(menuCollection).Doc(id).Get(ctx)
	if err != nil {
		return database.MenuItem{}, translate(err)
	}
	return menuItemFromSnapshot(snap)
}

func (s *Store) CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	ref, _, err := s.client.Collection(menuCollection).Add(ctx, menuItemDoc{
		Name:        arg.Name,
		Description: arg.Description,
		Price:       toFloat(arg.Price),
		Category:    arg.Category,
		ImageURL:    arg.ImageURL,
	})
	if err != nil {
		return database.MenuItem{}, translate(err)
	}
	return s.GetMenuItem(ctx, ref.ID)
}

func (s *Store) UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	_, err := s.client.Collection(menuCollection).Doc(arg.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: arg.Name},
		{Path: "description", Value: arg.Description},
		{Path: "price", Value: toFloat(arg.Price)},
		{Path: "category", Value: arg.Category},
		{Path: "imageUrl", Value: arg.ImageURL},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return database.MenuItem{}, translate(err)
	}
	return s.GetMenuItem(ctx, arg.ID)
}

func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	_, err := s.client.Collection(menuCollection).Doc(id).Delete(ctx, firestore.Exists)
	return translate(err)
}
