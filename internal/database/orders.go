package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createOrderSQL = `
INSERT INTO orders (user_id, items, total_amount, token_number, status, "timestamp")
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING order_id, user_id, items, total_amount, token_number, status, "timestamp"`

type CreateOrderParams struct {
	UserID      string
	Items       []byte
	TotalAmount pgtype.Numeric
	TokenNumber string
	Status      string
	Timestamp   string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrderSQL,
		arg.UserID, arg.Items, arg.TotalAmount, arg.TokenNumber, arg.Status, arg.Timestamp)
	return scanOrder(row)
}

const getOrderSQL = `
SELECT order_id, user_id, items, total_amount, token_number, status, "timestamp"
FROM orders
WHERE order_id = $1`

func (q *Queries) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderSQL, orderID))
}

const listOrdersSQL = `
SELECT order_id, user_id, items, total_amount, token_number, status, "timestamp"
FROM orders
ORDER BY order_id DESC`

func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	return q.queryOrders(ctx, listOrdersSQL)
}

const listOrdersByStatusSQL = `
SELECT order_id, user_id, items, total_amount, token_number, status, "timestamp"
FROM orders
WHERE status = $1
ORDER BY order_id DESC`

func (q *Queries) ListOrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	return q.queryOrders(ctx, listOrdersByStatusSQL, status)
}

const listOrdersForUserSQL = `
SELECT order_id, user_id, items, total_amount, token_number, status, "timestamp"
FROM orders
WHERE user_id = $1
ORDER BY order_id DESC`

func (q *Queries) ListOrdersForUser(ctx context.Context, userID string) ([]Order, error) {
	return q.queryOrders(ctx, listOrdersForUserSQL, userID)
}

const updateOrderStatusSQL = `
UPDATE orders
SET status = $1
WHERE order_id = $2 AND status = $3
RETURNING order_id, user_id, items, total_amount, token_number, status, "timestamp"`

// UpdateOrderStatusParams is a compare-and-set: the update only applies
// while the order still holds PrevStatus, so concurrent transitions on
// the same order surface as pgx.ErrNoRows instead of lost writes.
type UpdateOrderStatusParams struct {
	Status     string
	OrderID    int64
	PrevStatus string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatusSQL, arg.Status, arg.OrderID, arg.PrevStatus)
	return scanOrder(row)
}

func (q *Queries) queryOrders(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.OrderID, &o.UserID, &o.Items, &o.TotalAmount,
			&o.TokenNumber, &o.Status, &o.Timestamp); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(&o.OrderID, &o.UserID, &o.Items, &o.TotalAmount,
		&o.TokenNumber, &o.Status, &o.Timestamp)
	return o, err
}
