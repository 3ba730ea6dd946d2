// Package ports defines the contracts between the application core and its
// adapters: persistence for the order aggregate, transaction control, and the
// domain event boundary.
package ports

import (
	"context"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// The Order Store is the single source of truth; notifiers may read it but
// never write through this interface.
type OrderRepository interface {
	// Add persists a new order aggregate with its items and initial history.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate. History entries
	// are append-only: only entries newer than the persisted ones are written.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns *errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order while taking a row-level lock that is
	// held until the surrounding transaction ends. Concurrent status changes
	// for the same order serialize on this lock, so the loser revalidates
	// against the committed status and fails transition validation.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
