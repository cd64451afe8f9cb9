package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/canteen-pay/api/internal/database"
	"github.com/shopspring/decimal"
)

type ExportStore interface {
	ListOrders(ctx context.Context) ([]database.Order, error)
	GetUser(ctx context.Context, userID string) (database.User, error)
}

type ExportHandler struct {
	store ExportStore
	now   func() time.Time
}

func NewExportHandler(store ExportStore) *ExportHandler {
	return &ExportHandler{store: store, now: time.Now}
}

var exportHeader = []string{
	"Order ID", "Token", "User ID", "User Name", "Placed At",
	"Item", "Price", "Qty", "Subtotal", "Order Total",
}

// OrdersCSV streams the full ledger as CSV, one row per order line.
func (h *ExportHandler) OrdersCSV(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: listing orders for export: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	filename := fmt.Sprintf("orders_export_%s.csv", h.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(exportHeader); err != nil {
		log.Printf("ERROR: writing export header: %v", err)
		return
	}

	names := make(map[string]string)
	for _, order := range orders {
		var lines []database.OrderLine
		if err := json.Unmarshal(order.Items, &lines); err != nil {
			log.Printf("ERROR: decoding order %d payload: %v", order.OrderID, err)
			continue
		}

		userName, ok := names[order.UserID]
		if !ok {
			if user, err := h.store.GetUser(r.Context(), order.UserID); err == nil {
				userName = user.Name
			}
			names[order.UserID] = userName
		}

		total := numericToString(order.TotalAmount)
		placedAt := formatTimestamp(order.Timestamp)

		for _, l := range lines {
			subtotal := ""
			if price, err := decimal.NewFromString(l.Price); err == nil {
				subtotal = price.Mul(decimal.NewFromInt32(l.Qty)).StringFixed(2)
			}
			record := []string{
				fmt.Sprintf("%d", order.OrderID),
				order.TokenNumber,
				order.UserID,
				userName,
				placedAt,
				l.ItemName,
				l.Price,
				fmt.Sprintf("%d", l.Qty),
				subtotal,
				total,
			}
			if err := cw.Write(record); err != nil {
				log.Printf("ERROR: writing export row: %v", err)
				return
			}
		}
	}
}

// formatTimestamp renders a stored timestamp for humans, falling back
// to the raw text when it does not parse.
func formatTimestamp(s string) string {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Format("Jan 2, 2006 3:04 PM")
	}
	return s
}
