package database

import "github.com/jackc/pgx/v5/pgtype"

type User struct {
	UserID         string
	Name           string
	Role           string
	HashedPassword string
}

type MenuItem struct {
	ItemID    int64
	ItemName  string
	Price     pgtype.Numeric
	Available bool
}

type Offer struct {
	OfferID       int64
	OfferName     string
	ItemID        pgtype.Int8
	DiscountType  string
	DiscountValue pgtype.Numeric
	StartDate     pgtype.Date
	EndDate       pgtype.Date
	DayOfWeek     pgtype.Text
	Active        bool
}

type Order struct {
	OrderID     int64
	UserID      string
	Items       []byte
	TotalAmount pgtype.Numeric
	TokenNumber string
	Status      string
	Timestamp   string
}

// OrderLine is one entry of an order's serialized items payload. The
// ledger writes the payload once at checkout and never rewrites it;
// Price is the price actually charged, fixed to 2 decimals.
type OrderLine struct {
	ItemName string `json:"item_name"`
	Price    string `json:"price"`
	Qty      int32  `json:"qty"`
}
