package orders

import (
	"context"
	"errors"
	"time"

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

type orderRepoPG struct{ pool *pgxpool.Pool }

func NewOrderRepoPG(pool *pgxpool.Pool) OrderRepository { return &orderRepoPG{pool: pool} }

func (r *orderRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const orderCols = `id, user_id, status, total_amount, shipping_address, created_at, updated_at`
const orderItemCols = `id, order_id, medicine_id, medicine_name, quantity, price_per_unit, total_price`

func (r *orderRepoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicine_order (id, user_id, status, total_amount, shipping_address, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.UserID, o.Status, o.TotalAmount, o.ShippingAddress, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	for i := range o.Items {
		item := &o.Items[i]
		item.ID = uuid.New()
		item.OrderID = o.ID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO medicine_order_item (id, order_id, medicine_id, medicine_name, quantity, price_per_unit, total_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, item.OrderID, item.MedicineID, item.MedicineName, item.Quantity, item.PricePerUnit, item.TotalPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepoPG) scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return &o, err
}

func (r *orderRepoPG) loadItems(ctx context.Context, ordersByID map[uuid.UUID]*Order) error {
	ids := make([]uuid.UUID, 0, len(ordersByID))
	for id := range ordersByID {
		ids = append(ids, id)
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+orderItemCols+` FROM medicine_order_item WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MedicineID, &item.MedicineName,
			&item.Quantity, &item.PricePerUnit, &item.TotalPrice); err != nil {
			return err
		}
		if o, ok := ordersByID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func (r *orderRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := r.scanOrder(r.conn(ctx).QueryRow(ctx, `SELECT `+orderCols+` FROM medicine_order WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, map[uuid.UUID]*Order{o.ID: o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepoPG) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+orderCols+` FROM medicine_order WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Order
	byID := make(map[uuid.UUID]*Order)
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(byID) > 0 {
		if err := r.loadItems(ctx, byID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *orderRepoPG) ListAll(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medicine_order`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT o.id, o.user_id, o.status, o.total_amount, o.shipping_address, o.created_at, o.updated_at, u.name
		FROM medicine_order o
		JOIN app_user u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Order
	byID := make(map[uuid.UUID]*Order)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &o.ShippingAddress,
			&o.CreatedAt, &o.UpdatedAt, &o.CustomerName); err != nil {
			return nil, 0, err
		}
		items = append(items, &o)
		byID[o.ID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(byID) > 0 {
		if err := r.loadItems(ctx, byID); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (r *orderRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE medicine_order SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
