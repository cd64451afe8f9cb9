// Package service holds the checkout workflow: pricing a cart against
// the live menu and offer snapshot, then writing the order with a
// unique pickup token.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strconv"
	"time"

	"github.com/canteen-pay/api/internal/database"
	"github.com/canteen-pay/api/internal/enum"
	"github.com/canteen-pay/api/internal/pricing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// maxTokenAttempts bounds retries when a generated pickup token
// collides with a live order.
const maxTokenAttempts = 8

var (
	ErrEmptyItems      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be positive")
	ErrItemNotFound    = errors.New("menu item not found")
	ErrItemUnavailable = errors.New("menu item is unavailable")
	ErrTokenExhausted  = errors.New("could not allocate a pickup token")
)

// OrderItem is one requested cart entry by menu item id.
type OrderItem struct {
	ItemID int64 `json:"item_id"`
	Qty    int32 `json:"qty"`
}

// TxBeginner matches pgxpool.Pool's transaction entry point.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore is the slice of database.Queries checkout needs.
type OrderStore interface {
	GetMenuItem(ctx context.Context, itemID int64) (database.MenuItem, error)
	ListActiveOffers(ctx context.Context) ([]database.Offer, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
}

type OrderService struct {
	pool     TxBeginner
	store    OrderStore
	newStore func(db database.DBTX) OrderStore
	now      func() time.Time
	token    func() string
}

func NewOrderService(pool TxBeginner, store OrderStore, newStore func(db database.DBTX) OrderStore) *OrderService {
	return &OrderService{
		pool:     pool,
		store:    store,
		newStore: newStore,
		now:      time.Now,
		token:    randomToken,
	}
}

// CreateOrder prices the cart and persists it as a PLACED order. Token
// collisions with live orders retry with a fresh token up to
// maxTokenAttempts times.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, items []OrderItem) (database.Order, error) {
	if err := validateItems(items); err != nil {
		return database.Order{}, err
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		order, err := s.createOrderTx(ctx, userID, items)
		if err == nil {
			return order, nil
		}
		if isTokenConflict(err) {
			continue
		}
		return database.Order{}, err
	}
	return database.Order{}, ErrTokenExhausted
}

func (s *OrderService) createOrderTx(ctx context.Context, userID string, items []OrderItem) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)
	now := s.now()

	cart, err := s.buildCart(ctx, store, items, now)
	if err != nil {
		return database.Order{}, err
	}

	lines := make([]database.OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, database.OrderLine{
			ItemName: l.ItemName,
			Price:    l.DiscountedPrice.StringFixed(2),
			Qty:      l.Qty,
		})
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return database.Order{}, fmt.Errorf("marshaling order items: %w", err)
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:      userID,
		Items:       payload,
		TotalAmount: decimalToNumeric(cart.Total()),
		TokenNumber: s.token(),
		Status:      enum.OrderStatusPlaced,
		Timestamp:   now.Format(time.RFC3339),
	})
	if err != nil {
		return database.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("committing order: %w", err)
	}
	return order, nil
}

// QuoteCart prices items without persisting anything. The returned
// lines carry the applied offer labels for display.
func (s *OrderService) QuoteCart(ctx context.Context, items []OrderItem) ([]pricing.Line, decimal.Decimal, error) {
	if err := validateItems(items); err != nil {
		return nil, decimal.Zero, err
	}

	cart, err := s.buildCart(ctx, s.store, items, s.now())
	if err != nil {
		return nil, decimal.Zero, err
	}
	return cart.Lines, cart.Total(), nil
}

func (s *OrderService) buildCart(ctx context.Context, store OrderStore, items []OrderItem, now time.Time) (*pricing.Cart, error) {
	rows, err := store.ListActiveOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading offers: %w", err)
	}
	offers := make([]pricing.Offer, 0, len(rows))
	for _, r := range rows {
		offers = append(offers, offerFromRow(r))
	}

	cart := pricing.NewCart(now, offers)
	for _, item := range items {
		menuItem, err := store.GetMenuItem(ctx, item.ItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: item %d", ErrItemNotFound, item.ItemID)
			}
			return nil, fmt.Errorf("loading item %d: %w", item.ItemID, err)
		}
		if !menuItem.Available {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, menuItem.ItemName)
		}
		cart.Add(menuItem.ItemID, menuItem.ItemName, numericToDecimal(menuItem.Price), item.Qty)
	}
	return cart, nil
}

func validateItems(items []OrderItem) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for _, item := range items {
		if item.Qty <= 0 {
			return fmt.Errorf("%w: item %d", ErrInvalidQuantity, item.ItemID)
		}
	}
	return nil
}

func offerFromRow(r database.Offer) pricing.Offer {
	o := pricing.Offer{
		OfferID:       r.OfferID,
		Name:          r.OfferName,
		DiscountType:  r.DiscountType,
		DiscountValue: numericToDecimal(r.DiscountValue),
		Active:        r.Active,
	}
	if r.ItemID.Valid {
		id := r.ItemID.Int64
		o.ItemID = &id
	}
	if r.StartDate.Valid {
		d := r.StartDate.Time
		o.StartDate = &d
	}
	if r.EndDate.Valid {
		d := r.EndDate.Time
		o.EndDate = &d
	}
	if r.DayOfWeek.Valid {
		o.DayOfWeek = r.DayOfWeek.String
	}
	return o
}

func randomToken() string {
	return strconv.Itoa(rand.Intn(9000) + 1000)
}

func isTokenConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		pgErr.ConstraintName == "orders_token_number_key"
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Set(n.Int), n.Exp)
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}
