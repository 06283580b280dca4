package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type MedicineRepository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	List(ctx context.Context) ([]*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
}
