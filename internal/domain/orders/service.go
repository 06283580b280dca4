package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carebook/carebook/internal/domain/cart"
	"github.com/carebook/carebook/internal/domain/pharmacy"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyCart     = errors.New("cart is empty")
	ErrBlankAddress  = errors.New("shipping address is required")
)

// TxRunner executes fn atomically. Production wires db.WithTx; tests use a
// passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Passthrough runs fn without a transaction.
func Passthrough(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	orders    OrderRepository
	medicines *pharmacy.Service
	cart      *cart.Store
	tx        TxRunner
}

func NewService(orders OrderRepository, medicines *pharmacy.Service, cartStore *cart.Store, tx TxRunner) *Service {
	return &Service{orders: orders, medicines: medicines, cart: cartStore, tx: tx}
}

// Checkout turns the user's cart into a persisted order. Preconditions are
// checked before any storage work: an authenticated user, a non-blank
// shipping address, and a non-empty cart. The order row, its item rows, and
// the stock decrements commit in one transaction; any failure, including a
// medicine going out of stock mid-checkout, rolls the whole purchase back
// and leaves the cart intact. The cart is cleared only after the commit.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, shippingAddress string) (*Order, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("authentication required")
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, ErrBlankAddress
	}
	items := s.cart.Items(userID.String())
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &Order{
		UserID:          userID,
		Status:          StatusPending,
		ShippingAddress: strings.TrimSpace(shippingAddress),
	}
	total := decimal.Zero
	for _, item := range items {
		lineTotal := item.Medicine.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.Items = append(order.Items, OrderItem{
			MedicineID:   item.Medicine.ID,
			MedicineName: item.Medicine.Name,
			Quantity:     item.Quantity,
			PricePerUnit: item.Medicine.Price,
			TotalPrice:   lineTotal,
		})
		total = total.Add(lineTotal)
	}
	order.TotalAmount = total

	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, item := range order.Items {
			if err := s.medicines.DecrementStock(ctx, item.MedicineID, item.Quantity); err != nil {
				return fmt.Errorf("reserve %s: %w", item.MedicineName, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cart.Clear(userID.String()); err != nil {
		return order, err
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) UserOrders(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) AllOrders(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	return s.orders.ListAll(ctx, limit, offset)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validOrderStatuses[status] {
		return fmt.Errorf("invalid order status %q", status)
	}
	return s.orders.UpdateStatus(ctx, id, status)
}
