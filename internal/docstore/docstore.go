// Package docstore is the Cloud Firestore backend. It satisfies the same
// store interfaces as *database.Queries and reports missing documents as
// database.ErrNotFound.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"go.uber.org/zap"
	"google.golang.org/grpc/status"
)

const (
	ordersCollection    = "orders"
	menuCollection      = "menuItems"
	inventoryCollection = "inventoryItems"
	usersCollection     = "users"
	configCollection    = "configuration"
)

type Store struct {
	client *firestore.Client
	log    *zap.Logger
}

func New(client *firestore.Client, log *zap.Logger) *Store {
	return &Store{client: client, log: log}
}

// Open connects to projectID using application default credentials, or the
// emulator when FIRESTORE_EMULATOR_HOST is set.
func Open(ctx context.Context, projectID string, log *zap.Logger) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return New(client, log), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// translate maps gRPC status codes onto the backend-neutral sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return database.ErrNotFound
	case codes.AlreadyExists:
		return database.ErrDuplicate
	}
	return err
}

var errStatusMismatch = errors.New("status mismatch")

// Money is stored as a float, like the documents written by the web client.
func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func fromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
