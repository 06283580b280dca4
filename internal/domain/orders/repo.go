package orders

import (
	"context"

	"github.com/google/uuid"
)

type OrderRepository interface {
	// Create persists the order row and all of its item rows.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// ListByUser returns the user's orders newest first, items included.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	// ListAll returns all orders newest first with the customer name joined
	// in, for the admin listing.
	ListAll(ctx context.Context, limit, offset int) ([]*Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
