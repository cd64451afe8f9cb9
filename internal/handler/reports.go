package handler

import (
	"context"
	"log"
	"net/http"
	"sort"

	"github.com/canteen-pay/api/internal/database"
	"github.com/canteen-pay/api/internal/report"
)

type ReportStore interface {
	ListOrders(ctx context.Context) ([]database.Order, error)
}

type ReportHandler struct {
	store ReportStore
}

func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

type salesByItemEntry struct {
	ItemName string `json:"item_name"`
	QtySold  int64  `json:"qty_sold"`
}

// SalesByItem lists units sold per item, busiest sellers first.
func (h *ReportHandler) SalesByItem(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: listing orders for report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	sales := report.SalesByItem(orders)
	out := make([]salesByItemEntry, 0, len(sales))
	for name, qty := range sales {
		out = append(out, salesByItemEntry{ItemName: name, QtySold: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QtySold != out[j].QtySold {
			return out[i].QtySold > out[j].QtySold
		}
		return out[i].ItemName < out[j].ItemName
	})

	writeJSON(w, http.StatusOK, out)
}

type ordersPerHourEntry struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// OrdersPerHour returns all 24 hour buckets in clock order.
func (h *ReportHandler) OrdersPerHour(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: listing orders for report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	counts := report.OrdersPerHour(orders)
	out := make([]ordersPerHourEntry, 0, 24)
	for hour := 0; hour < 24; hour++ {
		out = append(out, ordersPerHourEntry{Hour: hour, Count: counts[hour]})
	}

	writeJSON(w, http.StatusOK, out)
}

type revenuePerDayEntry struct {
	Date    string `json:"date"`
	Revenue string `json:"revenue"`
}

// RevenuePerDay lists per-day takings in chronological order.
func (h *ReportHandler) RevenuePerDay(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: listing orders for report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	revenue := report.RevenuePerDay(orders)
	out := make([]revenuePerDayEntry, 0, len(revenue))
	for day, total := range revenue {
		out = append(out, revenuePerDayEntry{Date: day, Revenue: total.StringFixed(2)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	writeJSON(w, http.StatusOK, out)
}
