package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. New orders start pending; administrators move them through
// the rest of the set.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

var validOrderStatuses = map[string]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// Order maps to the medicine_order table. CustomerName is joined in for the
// admin listing only and is not a column of the order row.
type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	Status          string          `db:"status" json:"status"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	ShippingAddress string          `db:"shipping_address" json:"shipping_address"`
	CustomerName    string          `db:"customer_name" json:"customer_name,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	Items           []OrderItem     `json:"items"`
}

// OrderItem maps to the medicine_order_item table. Name and prices are
// snapshotted at checkout and never re-synced against the catalog.
type OrderItem struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	OrderID      uuid.UUID       `db:"order_id" json:"order_id"`
	MedicineID   uuid.UUID       `db:"medicine_id" json:"medicine_id"`
	MedicineName string          `db:"medicine_name" json:"medicine_name"`
	Quantity     int             `db:"quantity" json:"quantity"`
	PricePerUnit decimal.Decimal `db:"price_per_unit" json:"price_per_unit"`
	TotalPrice   decimal.Decimal `db:"total_price" json:"total_price"`
}
