package pharmacy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebook/carebook/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type medicineRepoPG struct{ pool *pgxpool.Pool }

func NewMedicineRepoPG(pool *pgxpool.Pool) MedicineRepository { return &medicineRepoPG{pool: pool} }

func (r *medicineRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const medicineCols = `id, name, description, price, stock, image, created_at`

func (r *medicineRepoPG) scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Stock, &m.Image, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMedicineNotFound
	}
	return &m, err
}

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicine (id, name, description, price, stock, image)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.Name, m.Description, m.Price, m.Stock, m.Image)
	return err
}

func (r *medicineRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return r.scanMedicine(r.conn(ctx).QueryRow(ctx, `SELECT `+medicineCols+` FROM medicine WHERE id = $1`, id))
}

func (r *medicineRepoPG) List(ctx context.Context) ([]*Medicine, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+medicineCols+` FROM medicine ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Medicine
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *medicineRepoPG) Update(ctx context.Context, m *Medicine) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicine SET name = $2, description = $3, price = $4, stock = $5, image = $6
		WHERE id = $1`,
		m.ID, m.Name, m.Description, m.Price, m.Stock, m.Image)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMedicineNotFound
	}
	return nil
}

func (r *medicineRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medicine WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMedicineNotFound
	}
	return nil
}

// DecrementStock takes stock atomically. The guard in the WHERE clause keeps
// stock from going negative under concurrent checkouts; zero rows affected
// means either an unknown medicine or not enough stock.
func (r *medicineRepoPG) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicine SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`,
		id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}
