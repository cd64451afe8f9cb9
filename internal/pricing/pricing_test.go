package pricing_test

import (
	"testing"
	"time"

	"github.com/canteen-pay/api/internal/pricing"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 6, 2, 12, 30, 0, 0, time.UTC) // a Monday

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ptrInt64(v int64) *int64 { return &v }

func ptrTime(t time.Time) *time.Time { return &t }

func percentOffer(id int64, name string, value string) pricing.Offer {
	return pricing.Offer{
		OfferID:       id,
		Name:          name,
		DiscountType:  pricing.DiscountPercentage,
		DiscountValue: dec(value),
		Active:        true,
	}
}

func fixedOffer(id int64, name string, value string) pricing.Offer {
	return pricing.Offer{
		OfferID:       id,
		Name:          name,
		DiscountType:  pricing.DiscountFixed,
		DiscountValue: dec(value),
		Active:        true,
	}
}

func TestBestDiscountNoOffers(t *testing.T) {
	discount, desc := pricing.BestDiscount(dec("50"), nil)
	if !discount.IsZero() {
		t.Errorf("discount = %s, want 0", discount)
	}
	if desc != "" {
		t.Errorf("desc = %q, want empty", desc)
	}
}

func TestBestDiscountPercentage(t *testing.T) {
	offers := []pricing.Offer{percentOffer(1, "Monday Madness", "20")}

	discount, desc := pricing.BestDiscount(dec("50"), offers)
	if got := discount.StringFixed(2); got != "10.00" {
		t.Errorf("discount = %s, want 10.00", got)
	}
	if want := "Monday Madness: 20% off"; desc != want {
		t.Errorf("desc = %q, want %q", desc, want)
	}
}

func TestBestDiscountFixed(t *testing.T) {
	offers := []pricing.Offer{fixedOffer(1, "Chai Time", "2")}

	discount, desc := pricing.BestDiscount(dec("10"), offers)
	if got := discount.StringFixed(2); got != "2.00" {
		t.Errorf("discount = %s, want 2.00", got)
	}
	if want := "Chai Time: Rs 2.00 off"; desc != want {
		t.Errorf("desc = %q, want %q", desc, want)
	}
}

func TestBestDiscountLargestWins(t *testing.T) {
	offers := []pricing.Offer{
		percentOffer(1, "Small", "10"),
		fixedOffer(2, "Big", "15"),
		percentOffer(3, "Medium", "20"),
	}

	// On a 50 item: 5, 15, 10. Fixed 15 wins.
	discount, desc := pricing.BestDiscount(dec("50"), offers)
	if got := discount.StringFixed(2); got != "15.00" {
		t.Errorf("discount = %s, want 15.00", got)
	}
	if want := "Big: Rs 15.00 off"; desc != want {
		t.Errorf("desc = %q, want %q", desc, want)
	}
}

func TestBestDiscountTieKeepsFirst(t *testing.T) {
	offers := []pricing.Offer{
		percentOffer(1, "First", "20"),
		fixedOffer(2, "Second", "10"),
	}

	// Both are worth 10 on a 50 item; the earlier offer stays.
	discount, desc := pricing.BestDiscount(dec("50"), offers)
	if got := discount.StringFixed(2); got != "10.00" {
		t.Errorf("discount = %s, want 10.00", got)
	}
	if want := "First: 20% off"; desc != want {
		t.Errorf("desc = %q, want %q", desc, want)
	}
}

func TestBestDiscountFlooredAtPrice(t *testing.T) {
	offers := []pricing.Offer{fixedOffer(1, "Giveaway", "500")}

	discount, _ := pricing.BestDiscount(dec("10"), offers)
	if got := discount.StringFixed(2); got != "10.00" {
		t.Errorf("discount = %s, want capped at 10.00", got)
	}
}

func TestOfferApplicability(t *testing.T) {
	tests := []struct {
		name   string
		offer  pricing.Offer
		itemID int64
		want   bool
	}{
		{
			name:   "inactive never applies",
			offer:  pricing.Offer{OfferID: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("5"), Active: false},
			itemID: 1,
			want:   false,
		},
		{
			name:   "all items offer applies to any item",
			offer:  fixedOffer(1, "x", "5"),
			itemID: 42,
			want:   true,
		},
		{
			name: "item scoped offer matches its item",
			offer: pricing.Offer{OfferID: 1, ItemID: ptrInt64(7), DiscountType: pricing.DiscountFixed,
				DiscountValue: dec("5"), Active: true},
			itemID: 7,
			want:   true,
		},
		{
			name: "item scoped offer skips other items",
			offer: pricing.Offer{OfferID: 1, ItemID: ptrInt64(7), DiscountType: pricing.DiscountFixed,
				DiscountValue: dec("5"), Active: true},
			itemID: 8,
			want:   false,
		},
		{
			name: "end date is inclusive",
			offer: pricing.Offer{OfferID: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("5"),
				EndDate: ptrTime(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)), Active: true},
			itemID: 1,
			want:   true,
		},
		{
			name: "start date is inclusive",
			offer: pricing.Offer{OfferID: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("5"),
				StartDate: ptrTime(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)), Active: true},
			itemID: 1,
			want:   true,
		},
		{
			name: "not yet started",
			offer: pricing.Offer{OfferID: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("5"),
				StartDate: ptrTime(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)), Active: true},
			itemID: 1,
			want:   false,
		},
		{
			name: "already ended",
			offer: pricing.Offer{OfferID: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("5"),
				EndDate: ptrTime(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)), Active: true},
			itemID: 1,
			want:   false,
		},
		{
			name: "matching weekday",
			offer: pricing.Offer{OfferID: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("5"),
				DayOfWeek: "MON", Active: true},
			itemID: 1,
			want:   true,
		},
		{
			name: "wrong weekday",
			offer: pricing.Offer{OfferID: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("5"),
				DayOfWeek: "TUE", Active: true},
			itemID: 1,
			want:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.offer.Applicable(tc.itemID, testNow); got != tc.want {
				t.Errorf("Applicable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplicableOffersSortedByID(t *testing.T) {
	offers := []pricing.Offer{
		fixedOffer(9, "c", "1"),
		fixedOffer(2, "a", "1"),
		fixedOffer(5, "b", "1"),
	}

	got := pricing.ApplicableOffers(offers, 1, testNow)
	if len(got) != 3 {
		t.Fatalf("got %d offers, want 3", len(got))
	}
	for i, wantID := range []int64{2, 5, 9} {
		if got[i].OfferID != wantID {
			t.Errorf("offer[%d].OfferID = %d, want %d", i, got[i].OfferID, wantID)
		}
	}
}

func TestCartMergeDoesNotCompound(t *testing.T) {
	offers := []pricing.Offer{percentOffer(1, "Deal", "20")}
	cart := pricing.NewCart(testNow, offers)

	cart.Add(1, "Masala Dosa", dec("50"), 1)
	cart.Add(1, "Masala Dosa", dec("50"), 2)

	if len(cart.Lines) != 1 {
		t.Fatalf("got %d lines, want merged into 1", len(cart.Lines))
	}
	line := cart.Lines[0]
	if line.Qty != 3 {
		t.Errorf("qty = %d, want 3", line.Qty)
	}
	if got := line.DiscountedPrice.StringFixed(2); got != "40.00" {
		t.Errorf("discounted price = %s, want 40.00", got)
	}
	if got := cart.Total().StringFixed(2); got != "120.00" {
		t.Errorf("total = %s, want 120.00", got)
	}
}

func TestCartTotalInvariantUnderSplitAdds(t *testing.T) {
	offers := []pricing.Offer{
		percentOffer(1, "Dosa Deal", "10"),
		fixedOffer(2, "Chai Time", "2"),
	}

	oneShot := pricing.NewCart(testNow, offers)
	oneShot.Add(1, "Masala Dosa", dec("50"), 2)
	oneShot.Add(6, "Tea", dec("10"), 3)

	split := pricing.NewCart(testNow, offers)
	split.Add(6, "Tea", dec("10"), 1)
	split.Add(1, "Masala Dosa", dec("50"), 1)
	split.Add(6, "Tea", dec("10"), 2)
	split.Add(1, "Masala Dosa", dec("50"), 1)

	if a, b := oneShot.Total().StringFixed(2), split.Total().StringFixed(2); a != b {
		t.Errorf("totals differ: one-shot %s vs split %s", a, b)
	}
}

func TestCartTeaFixedDiscount(t *testing.T) {
	offers := []pricing.Offer{fixedOffer(1, "Chai Time", "2")}
	cart := pricing.NewCart(testNow, offers)

	cart.Add(6, "Tea", dec("10"), 3)

	if got := cart.Total().StringFixed(2); got != "24.00" {
		t.Errorf("total = %s, want 24.00", got)
	}
	if got := cart.Lines[0].OfferApplied; got != "Chai Time: Rs 2.00 off" {
		t.Errorf("offer applied = %q", got)
	}
}

func TestWeekday(t *testing.T) {
	if got := pricing.Weekday(testNow); got != "MON" {
		t.Errorf("Weekday = %q, want MON", got)
	}
	sunday := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if got := pricing.Weekday(sunday); got != "SUN" {
		t.Errorf("Weekday = %q, want SUN", got)
	}
}
