// Package pricing computes discounted line prices and cart totals from
// an offer snapshot taken at quote or checkout time.
package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

var oneHundred = decimal.NewFromInt(100)

// Offer is a discount rule. A nil ItemID applies to every item. Nil
// dates and an empty DayOfWeek leave that constraint unbounded.
type Offer struct {
	OfferID       int64
	Name          string
	ItemID        *int64
	DiscountType  string
	DiscountValue decimal.Decimal
	StartDate     *time.Time
	EndDate       *time.Time
	DayOfWeek     string
	Active        bool
}

// Applicable reports whether the offer covers itemID at the given time.
// Date bounds are inclusive on both ends and compared by calendar day.
func (o Offer) Applicable(itemID int64, now time.Time) bool {
	if !o.Active {
		return false
	}
	if o.ItemID != nil && *o.ItemID != itemID {
		return false
	}
	today := dateOf(now)
	if o.StartDate != nil && today.Before(dateOf(*o.StartDate)) {
		return false
	}
	if o.EndDate != nil && today.After(dateOf(*o.EndDate)) {
		return false
	}
	if o.DayOfWeek != "" && o.DayOfWeek != Weekday(now) {
		return false
	}
	return true
}

// Amount returns the discount off price: value percent of price for
// percentage offers, the flat value otherwise.
func (o Offer) Amount(price decimal.Decimal) decimal.Decimal {
	if o.DiscountType == DiscountPercentage {
		return price.Mul(o.DiscountValue).Div(oneHundred)
	}
	return o.DiscountValue
}

// Description renders the applied-offer label shown on receipts, like
// "Monday Madness: 20% off" or "Chai Time: Rs 2.00 off".
func (o Offer) Description() string {
	if o.DiscountType == DiscountPercentage {
		return o.Name + ": " + o.DiscountValue.StringFixed(0) + "% off"
	}
	return o.Name + ": Rs " + o.DiscountValue.StringFixed(2) + " off"
}

// ApplicableOffers filters offers down to those covering itemID at now,
// ordered by ascending offer id so ties resolve deterministically.
func ApplicableOffers(offers []Offer, itemID int64, now time.Time) []Offer {
	var out []Offer
	for _, o := range offers {
		if o.Applicable(itemID, now) {
			out = append(out, o)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].OfferID < out[j-1].OfferID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// BestDiscount picks the single largest discount among offers, first
// one winning ties, and returns it with its description. The discount
// is capped at the original price so lines never go negative.
func BestDiscount(originalPrice decimal.Decimal, offers []Offer) (decimal.Decimal, string) {
	best := decimal.Zero
	desc := ""
	for _, o := range offers {
		amt := o.Amount(originalPrice)
		if amt.GreaterThan(best) {
			best = amt
			desc = o.Description()
		}
	}
	if best.GreaterThan(originalPrice) {
		best = originalPrice
	}
	return best, desc
}

// Line is one priced cart entry. DiscountedPrice is per unit.
type Line struct {
	ItemID          int64
	ItemName        string
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	Qty             int32
	OfferApplied    string
}

// LineTotal is the charged unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.DiscountedPrice.Mul(decimal.NewFromInt32(l.Qty))
}

// Cart accumulates lines against one offer snapshot. All lines are
// priced against the same instant, so a cart built in several Add
// calls prices identically to one built in a single pass.
type Cart struct {
	Now    time.Time
	Offers []Offer
	Lines  []Line
}

func NewCart(now time.Time, offers []Offer) *Cart {
	return &Cart{Now: now, Offers: offers}
}

// Add merges qty units of an item into the cart. Repeat additions of
// the same item grow the existing line and reprice it from the
// original price, so discounts never compound.
func (c *Cart) Add(itemID int64, itemName string, price decimal.Decimal, qty int32) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Qty += qty
			return
		}
	}
	applicable := ApplicableOffers(c.Offers, itemID, c.Now)
	discount, desc := BestDiscount(price, applicable)
	c.Lines = append(c.Lines, Line{
		ItemID:          itemID,
		ItemName:        itemName,
		OriginalPrice:   price,
		DiscountedPrice: price.Sub(discount),
		Qty:             qty,
		OfferApplied:    desc,
	})
}

// Total sums all line totals, rounded to 2 decimals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total.Round(2)
}

// Weekday returns the three-letter uppercase day code for t, matching
// the offers day_of_week column values.
func Weekday(t time.Time) string {
	return strings.ToUpper(t.Format("Mon"))
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
