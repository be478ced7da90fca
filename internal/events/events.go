// Package events carries order change notifications to live views and the broker.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/MarcusAlienx/casanala/internal/enum"
)

type Kind string

const (
	KindOrderCreated       Kind = "order.created"
	KindOrderStatusChanged Kind = "order.status_changed"
)

// OrderEvent is an invalidation hint: consumers re-fetch the views it names.
type OrderEvent struct {
	Kind           Kind             `json:"type"`
	OrderID        string           `json:"orderId"`
	OrderType      enum.OrderType   `json:"orderType"`
	Status         enum.OrderStatus `json:"status"`
	PreviousStatus enum.OrderStatus `json:"previousStatus,omitempty"`
	Views          []string         `json:"views"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

// Notifier delivers order events. Implementations must not block for long;
// callers treat delivery as best effort.
type Notifier interface {
	Notify(ctx context.Context, e OrderEvent) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, e OrderEvent) error

func (f NotifierFunc) Notify(ctx context.Context, e OrderEvent) error {
	return f(ctx, e)
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e OrderEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
