package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Service struct {
	medicines MedicineRepository
}

func NewService(medicines MedicineRepository) *Service {
	return &Service{medicines: medicines}
}

func (s *Service) ListMedicines(ctx context.Context) ([]*Medicine, error) {
	return s.medicines.List(ctx)
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

func (s *Service) AddMedicine(ctx context.Context, m *Medicine) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if m.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if m.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return s.medicines.Create(ctx, m)
}

// UpdateMedicine applies a partial update. Fields left nil in upd keep their
// stored values.
func (s *Service) UpdateMedicine(ctx context.Context, id uuid.UUID, upd MedicineUpdate) (*Medicine, error) {
	m, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, fmt.Errorf("name cannot be blank")
		}
		m.Name = *upd.Name
	}
	if upd.Description != nil {
		m.Description = upd.Description
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return nil, fmt.Errorf("price cannot be negative")
		}
		m.Price = *upd.Price
	}
	if upd.Stock != nil {
		if *upd.Stock < 0 {
			return nil, fmt.Errorf("stock cannot be negative")
		}
		m.Stock = *upd.Stock
	}
	if upd.Image != nil {
		m.Image = upd.Image
	}
	if err := s.medicines.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	return s.medicines.Delete(ctx, id)
}

// DecrementStock reserves qty units, failing outright when stock would go
// negative. Checkout calls this inside its transaction.
func (s *Service) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return s.medicines.DecrementStock(ctx, id, qty)
}
