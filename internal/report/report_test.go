package report_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/canteen-pay/api/internal/database"
	"github.com/canteen-pay/api/internal/report"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func testNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scanning numeric %q: %v", s, err)
	}
	return n
}

func testOrder(t *testing.T, total, timestamp string, lines []database.OrderLine) database.Order {
	t.Helper()
	items, err := json.Marshal(lines)
	if err != nil {
		t.Fatalf("marshaling items: %v", err)
	}
	return database.Order{
		UserID:      "u1",
		Items:       items,
		TotalAmount: testNumeric(t, total),
		Status:      "COMPLETED",
		Timestamp:   timestamp,
	}
}

func TestSalesByItem(t *testing.T) {
	orders := []database.Order{
		testOrder(t, "100.00", "2025-06-02T09:15:00Z", []database.OrderLine{
			{ItemName: "Masala Dosa", Price: "50.00", Qty: 2},
		}),
		testOrder(t, "60.00", "2025-06-02T12:40:00Z", []database.OrderLine{
			{ItemName: "Masala Dosa", Price: "50.00", Qty: 1},
			{ItemName: "Tea", Price: "10.00", Qty: 1},
		}),
	}

	sales := report.SalesByItem(orders)
	if sales["Masala Dosa"] != 3 {
		t.Errorf("Masala Dosa = %d, want 3", sales["Masala Dosa"])
	}
	if sales["Tea"] != 1 {
		t.Errorf("Tea = %d, want 1", sales["Tea"])
	}
}

func TestSalesByItemNonPositiveQtyCountsAsOne(t *testing.T) {
	orders := []database.Order{
		testOrder(t, "50.00", "2025-06-02T09:15:00Z", []database.OrderLine{
			{ItemName: "Masala Dosa", Price: "50.00", Qty: 0},
			{ItemName: "Tea", Price: "10.00", Qty: -4},
		}),
	}

	sales := report.SalesByItem(orders)
	if sales["Masala Dosa"] != 1 {
		t.Errorf("Masala Dosa = %d, want 1", sales["Masala Dosa"])
	}
	if sales["Tea"] != 1 {
		t.Errorf("Tea = %d, want 1", sales["Tea"])
	}
}

func TestSalesByItemSkipsBadPayload(t *testing.T) {
	orders := []database.Order{
		{UserID: "u1", Items: []byte(`not json`), TotalAmount: testNumeric(t, "10.00"),
			Status: "COMPLETED", Timestamp: "2025-06-02T09:15:00Z"},
		testOrder(t, "10.00", "2025-06-02T09:20:00Z", []database.OrderLine{
			{ItemName: "Tea", Price: "10.00", Qty: 1},
		}),
	}

	sales := report.SalesByItem(orders)
	if len(sales) != 1 || sales["Tea"] != 1 {
		t.Errorf("sales = %v, want only Tea: 1", sales)
	}
}

func TestOrdersPerHourHasAllBuckets(t *testing.T) {
	orders := []database.Order{
		testOrder(t, "10.00", "2025-06-02T09:15:00Z", nil),
		testOrder(t, "10.00", "2025-06-02T09:59:00Z", nil),
		testOrder(t, "10.00", "2025-06-02T13:05:00", nil), // no zone suffix
		testOrder(t, "10.00", "garbage", nil),
	}

	counts := report.OrdersPerHour(orders)
	if len(counts) != 24 {
		t.Fatalf("got %d buckets, want 24", len(counts))
	}
	if counts[9] != 2 {
		t.Errorf("hour 9 = %d, want 2", counts[9])
	}
	if counts[13] != 1 {
		t.Errorf("hour 13 = %d, want 1", counts[13])
	}
	if counts[0] != 0 {
		t.Errorf("hour 0 = %d, want 0", counts[0])
	}
}

func TestRevenuePerDay(t *testing.T) {
	orders := []database.Order{
		testOrder(t, "100.00", "2025-06-02T09:15:00Z", nil),
		testOrder(t, "24.50", "2025-06-02T12:40:00Z", nil),
		testOrder(t, "70.00", "2025-06-03T08:05:00Z", nil),
	}

	revenue := report.RevenuePerDay(orders)
	if got := revenue["2025-06-02"].StringFixed(2); got != "124.50" {
		t.Errorf("2025-06-02 = %s, want 124.50", got)
	}
	if got := revenue["2025-06-03"].StringFixed(2); got != "70.00" {
		t.Errorf("2025-06-03 = %s, want 70.00", got)
	}
}

func TestRevenuePerDayFallsBackToDatePrefix(t *testing.T) {
	orders := []database.Order{
		// Parseable by neither layout but carries a valid date prefix.
		testOrder(t, "42.00", "2025-06-02Tlate-morning", nil),
		testOrder(t, "8.00", "completely broken", nil),
	}

	revenue := report.RevenuePerDay(orders)
	if got := revenue["2025-06-02"].StringFixed(2); got != "42.00" {
		t.Errorf("2025-06-02 = %s, want 42.00", got)
	}
	if len(revenue) != 1 {
		t.Errorf("revenue = %v, want single day", revenue)
	}
}

func TestRevenueGrandTotalMatchesLedger(t *testing.T) {
	orders := []database.Order{
		testOrder(t, "100.00", "2025-06-02T09:15:00Z", nil),
		testOrder(t, "24.50", "2025-06-02T12:40:00Z", nil),
		testOrder(t, "70.00", "2025-06-03T08:05:00Z", nil),
		testOrder(t, "15.25", "2025-06-04T17:00:00Z", nil),
	}

	want := decimal.Zero
	for _, o := range orders {
		want = want.Add(decimal.NewFromBigInt(new(big.Int).Set(o.TotalAmount.Int), o.TotalAmount.Exp))
	}

	got := decimal.Zero
	for _, total := range report.RevenuePerDay(orders) {
		got = got.Add(total)
	}
	if !got.Equal(want) {
		t.Errorf("grand total = %s, want %s", got, want)
	}
}
