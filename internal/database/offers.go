package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createOfferSQL = `
INSERT INTO offers (offer_name, item_id, discount_type, discount_value, start_date, end_date, day_of_week, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING offer_id, offer_name, item_id, discount_type, discount_value, start_date, end_date, day_of_week, active`

type CreateOfferParams struct {
	OfferName     string
	ItemID        pgtype.Int8
	DiscountType  string
	DiscountValue pgtype.Numeric
	StartDate     pgtype.Date
	EndDate       pgtype.Date
	DayOfWeek     pgtype.Text
	Active        bool
}

func (q *Queries) CreateOffer(ctx context.Context, arg CreateOfferParams) (Offer, error) {
	row := q.db.QueryRow(ctx, createOfferSQL,
		arg.OfferName, arg.ItemID, arg.DiscountType, arg.DiscountValue,
		arg.StartDate, arg.EndDate, arg.DayOfWeek, arg.Active)
	return scanOffer(row)
}

const getOfferSQL = `
SELECT offer_id, offer_name, item_id, discount_type, discount_value, start_date, end_date, day_of_week, active
FROM offers
WHERE offer_id = $1`

func (q *Queries) GetOffer(ctx context.Context, offerID int64) (Offer, error) {
	return scanOffer(q.db.QueryRow(ctx, getOfferSQL, offerID))
}

const listOffersSQL = `
SELECT o.offer_id, o.offer_name, o.item_id, o.discount_type, o.discount_value,
       o.start_date, o.end_date, o.day_of_week, o.active, m.item_name
FROM offers o
LEFT JOIN menu m ON o.item_id = m.item_id
ORDER BY o.offer_id DESC`

// ListOffersRow is an offer joined against the live menu for display.
// ItemName is null for all-items offers and for deleted items.
type ListOffersRow struct {
	Offer
	ItemName pgtype.Text
}

func (q *Queries) ListOffers(ctx context.Context) ([]ListOffersRow, error) {
	rows, err := q.db.Query(ctx, listOffersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []ListOffersRow
	for rows.Next() {
		var r ListOffersRow
		if err := rows.Scan(&r.OfferID, &r.OfferName, &r.ItemID, &r.DiscountType, &r.DiscountValue,
			&r.StartDate, &r.EndDate, &r.DayOfWeek, &r.Active, &r.ItemName); err != nil {
			return nil, err
		}
		offers = append(offers, r)
	}
	return offers, rows.Err()
}

const listActiveOffersSQL = `
SELECT offer_id, offer_name, item_id, discount_type, discount_value, start_date, end_date, day_of_week, active
FROM offers
WHERE active = TRUE
ORDER BY offer_id ASC`

// ListActiveOffers returns the active offer snapshot. Date, day-of-week
// and item applicability are evaluated by the caller against "now".
func (q *Queries) ListActiveOffers(ctx context.Context) ([]Offer, error) {
	rows, err := q.db.Query(ctx, listActiveOffersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		var o Offer
		if err := rows.Scan(&o.OfferID, &o.OfferName, &o.ItemID, &o.DiscountType, &o.DiscountValue,
			&o.StartDate, &o.EndDate, &o.DayOfWeek, &o.Active); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

const updateOfferSQL = `
UPDATE offers
SET offer_name = $1, item_id = $2, discount_type = $3, discount_value = $4,
    start_date = $5, end_date = $6, day_of_week = $7, active = $8
WHERE offer_id = $9
RETURNING offer_id, offer_name, item_id, discount_type, discount_value, start_date, end_date, day_of_week, active`

type UpdateOfferParams struct {
	OfferName     string
	ItemID        pgtype.Int8
	DiscountType  string
	DiscountValue pgtype.Numeric
	StartDate     pgtype.Date
	EndDate       pgtype.Date
	DayOfWeek     pgtype.Text
	Active        bool
	OfferID       int64
}

func (q *Queries) UpdateOffer(ctx context.Context, arg UpdateOfferParams) (Offer, error) {
	row := q.db.QueryRow(ctx, updateOfferSQL,
		arg.OfferName, arg.ItemID, arg.DiscountType, arg.DiscountValue,
		arg.StartDate, arg.EndDate, arg.DayOfWeek, arg.Active, arg.OfferID)
	return scanOffer(row)
}

const deleteOfferSQL = `
DELETE FROM offers
WHERE offer_id = $1
RETURNING offer_id`

func (q *Queries) DeleteOffer(ctx context.Context, offerID int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteOfferSQL, offerID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (Offer, error) {
	var o Offer
	err := row.Scan(&o.OfferID, &o.OfferName, &o.ItemID, &o.DiscountType, &o.DiscountValue,
		&o.StartDate, &o.EndDate, &o.DayOfWeek, &o.Active)
	return o, err
}
