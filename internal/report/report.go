// Package report aggregates the order ledger into sales, traffic and
// revenue summaries.
package report

import (
	"encoding/json"
	"math/big"
	"strings"
	"time"

	"github.com/canteen-pay/api/internal/database"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// timestampLayouts are the formats accepted when bucketing by time.
// Rows whose timestamp matches neither are skipped, not fatal.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// SalesByItem sums quantity sold per item name across all orders.
// Lines with a non-positive quantity count as one unit. Orders whose
// items payload fails to decode are skipped.
func SalesByItem(orders []database.Order) map[string]int64 {
	sales := make(map[string]int64)
	for _, o := range orders {
		var lines []database.OrderLine
		if err := json.Unmarshal(o.Items, &lines); err != nil {
			continue
		}
		for _, l := range lines {
			qty := int64(l.Qty)
			if qty <= 0 {
				qty = 1
			}
			sales[l.ItemName] += qty
		}
	}
	return sales
}

// OrdersPerHour counts orders in each hour-of-day bucket. All 24
// buckets are present in the result even when empty.
func OrdersPerHour(orders []database.Order) map[int]int64 {
	counts := make(map[int]int64, 24)
	for h := 0; h < 24; h++ {
		counts[h] = 0
	}
	for _, o := range orders {
		ts, ok := parseTimestamp(o.Timestamp)
		if !ok {
			continue
		}
		counts[ts.Hour()]++
	}
	return counts
}

// RevenuePerDay sums order totals per calendar day, keyed YYYY-MM-DD
// and rounded to 2 decimals per bucket. A timestamp that fails to
// parse still contributes when its text carries a leading date.
func RevenuePerDay(orders []database.Order) map[string]decimal.Decimal {
	revenue := make(map[string]decimal.Decimal)
	for _, o := range orders {
		day, ok := dayKey(o.Timestamp)
		if !ok {
			continue
		}
		revenue[day] = revenue[day].Add(numericToDecimal(o.TotalAmount))
	}
	for day, total := range revenue {
		revenue[day] = total.Round(2)
	}
	return revenue
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func dayKey(s string) (string, bool) {
	if ts, ok := parseTimestamp(s); ok {
		return ts.Format("2006-01-02"), true
	}
	if i := strings.IndexByte(s, 'T'); i > 0 {
		if _, err := time.Parse("2006-01-02", s[:i]); err == nil {
			return s[:i], true
		}
	}
	return "", false
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Set(n.Int), n.Exp)
}
