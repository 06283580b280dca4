package pharmacy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Medicine maps to the medicine table. Description and Image are nullable.
// Stock never goes below zero; decrements that would cross zero fail.
type Medicine struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	Image       *string         `db:"image" json:"image"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// MedicineUpdate carries a partial update. Nil fields are left untouched.
type MedicineUpdate struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Image       *string          `json:"image"`
}
