package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listMenuSQL = `
SELECT item_id, item_name, price, available
FROM menu
ORDER BY item_name ASC`

func (q *Queries) ListMenu(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ItemID, &m.ItemName, &m.Price, &m.Available); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const getMenuItemSQL = `
SELECT item_id, item_name, price, available
FROM menu
WHERE item_id = $1`

func (q *Queries) GetMenuItem(ctx context.Context, itemID int64) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItemSQL, itemID)
	var m MenuItem
	err := row.Scan(&m.ItemID, &m.ItemName, &m.Price, &m.Available)
	return m, err
}

const createMenuItemSQL = `
INSERT INTO menu (item_name, price, available)
VALUES ($1, $2, $3)
RETURNING item_id, item_name, price, available`

type CreateMenuItemParams struct {
	ItemName  string
	Price     pgtype.Numeric
	Available bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItemSQL, arg.ItemName, arg.Price, arg.Available)
	var m MenuItem
	err := row.Scan(&m.ItemID, &m.ItemName, &m.Price, &m.Available)
	return m, err
}

const updateMenuItemSQL = `
UPDATE menu
SET item_name = $1, price = $2, available = $3
WHERE item_id = $4
RETURNING item_id, item_name, price, available`

type UpdateMenuItemParams struct {
	ItemName  string
	Price     pgtype.Numeric
	Available bool
	ItemID    int64
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItemSQL, arg.ItemName, arg.Price, arg.Available, arg.ItemID)
	var m MenuItem
	err := row.Scan(&m.ItemID, &m.ItemName, &m.Price, &m.Available)
	return m, err
}

const deleteMenuItemSQL = `
DELETE FROM menu
WHERE item_id = $1
RETURNING item_id`

// DeleteMenuItem removes a menu item. Past orders keep their snapshot
// payload, so deletion never cascades into the ledger.
func (q *Queries) DeleteMenuItem(ctx context.Context, itemID int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteMenuItemSQL, itemID)
	var id int64
	err := row.Scan(&id)
	return id, err
}
