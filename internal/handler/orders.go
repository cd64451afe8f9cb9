package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/canteen-pay/api/internal/database"
	"github.com/canteen-pay/api/internal/enum"
	"github.com/canteen-pay/api/internal/middleware"
	"github.com/canteen-pay/api/internal/pricing"
	"github.com/canteen-pay/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// allowedTransitions is the order lifecycle. An order may go straight
// from PLACED to COMPLETED when pickup and handoff coincide.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPlaced:    {enum.OrderStatusReady, enum.OrderStatusCompleted},
	enum.OrderStatusReady:     {enum.OrderStatusCompleted},
	enum.OrderStatusCompleted: {},
}

type OrderServicer interface {
	CreateOrder(ctx context.Context, userID string, items []service.OrderItem) (database.Order, error)
	QuoteCart(ctx context.Context, items []service.OrderItem) ([]pricing.Line, decimal.Decimal, error)
}

type OrderReadStore interface {
	GetOrder(ctx context.Context, orderID int64) (database.Order, error)
	ListOrders(ctx context.Context) ([]database.Order, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]database.Order, error)
	ListOrdersForUser(ctx context.Context, userID string) ([]database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	GetUser(ctx context.Context, userID string) (database.User, error)
}

// Broadcaster pushes order events to connected staff displays.
type Broadcaster interface {
	Broadcast(eventType string, payload any)
}

type OrdersHandler struct {
	svc         OrderServicer
	store       OrderReadStore
	broadcaster Broadcaster
	upiID       string
}

func NewOrdersHandler(svc OrderServicer, store OrderReadStore, broadcaster Broadcaster, upiID string) *OrdersHandler {
	return &OrdersHandler{svc: svc, store: store, broadcaster: broadcaster, upiID: upiID}
}

type createOrderRequest struct {
	Items []service.OrderItem `json:"items"`
}

type orderResponse struct {
	OrderID     int64                `json:"order_id"`
	UserID      string               `json:"user_id"`
	Items       []database.OrderLine `json:"items"`
	TotalAmount string               `json:"total_amount"`
	TokenNumber string               `json:"token_number"`
	Status      string               `json:"status"`
	Timestamp   string               `json:"timestamp"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authentication"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), claims.UserID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyItems),
			errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrItemNotFound),
			errors.Is(err, service.ErrItemUnavailable):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrTokenExhausted):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "could not allocate a pickup token, try again"})
		default:
			log.Printf("ERROR: creating order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp, err := toOrderResponse(order)
	if err != nil {
		log.Printf("ERROR: decoding order payload: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.Broadcast("order.created", resp)
	}
	writeJSON(w, http.StatusCreated, resp)
}

type quoteLineResponse struct {
	ItemID          int64  `json:"item_id"`
	ItemName        string `json:"item_name"`
	OriginalPrice   string `json:"original_price"`
	DiscountedPrice string `json:"discounted_price"`
	Qty             int32  `json:"qty"`
	OfferApplied    string `json:"offer_applied,omitempty"`
	LineTotal       string `json:"line_total"`
}

type quoteResponse struct {
	Lines []quoteLineResponse `json:"lines"`
	Total string              `json:"total"`
}

func (h *OrdersHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	lines, total, err := h.svc.QuoteCart(r.Context(), req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyItems),
			errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrItemNotFound),
			errors.Is(err, service.ErrItemUnavailable):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: quoting cart: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := quoteResponse{Lines: make([]quoteLineResponse, 0, len(lines)), Total: total.StringFixed(2)}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, quoteLineResponse{
			ItemID:          l.ItemID,
			ItemName:        l.ItemName,
			OriginalPrice:   l.OriginalPrice.StringFixed(2),
			DiscountedPrice: l.DiscountedPrice.StringFixed(2),
			Qty:             l.Qty,
			OfferApplied:    l.OfferApplied,
			LineTotal:       l.LineTotal().StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	var (
		orders []database.Order
		err    error
	)
	if status != "" {
		if !isValidOrderStatus(status) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be PLACED, READY or COMPLETED"})
			return
		}
		orders, err = h.store.ListOrdersByStatus(r.Context(), status)
	} else {
		orders, err = h.store.ListOrders(r.Context())
	}
	if err != nil {
		log.Printf("ERROR: listing orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.writeOrderList(w, orders)
}

func (h *OrdersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authentication"})
		return
	}

	orders, err := h.store.ListOrdersForUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: listing user orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.writeOrderList(w, orders)
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, ok := h.fetchOrderForCaller(w, r)
	if !ok {
		return
	}

	resp, err := toOrderResponse(order)
	if err != nil {
		log.Printf("ERROR: decoding order payload: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !isValidOrderStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be PLACED, READY or COMPLETED"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: fetching order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if !transitionAllowed(order.Status, req.Status) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": fmt.Sprintf("cannot transition order from %s to %s", order.Status, req.Status),
		})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		Status:     req.Status,
		OrderID:    orderID,
		PrevStatus: order.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the compare-and-set race to a concurrent transition.
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed concurrently, retry"})
			return
		}
		log.Printf("ERROR: updating order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := toOrderResponse(updated)
	if err != nil {
		log.Printf("ERROR: decoding order payload: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.Broadcast("order.status_changed", resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

type receiptLineResponse struct {
	ItemName string `json:"item_name"`
	Price    string `json:"price"`
	Qty      int32  `json:"qty"`
	Subtotal string `json:"subtotal"`
}

type receiptResponse struct {
	OrderID     int64                 `json:"order_id"`
	TokenNumber string                `json:"token_number"`
	UserID      string                `json:"user_id"`
	UserName    string                `json:"user_name,omitempty"`
	Timestamp   string                `json:"timestamp"`
	Lines       []receiptLineResponse `json:"lines"`
	TotalAmount string                `json:"total_amount"`
}

// Receipt renders the final bill for a completed order. Orders still
// in the kitchen have no receipt yet.
func (h *OrdersHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	order, ok := h.fetchOrderForCaller(w, r)
	if !ok {
		return
	}

	if order.Status != enum.OrderStatusCompleted {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "receipt is only available for completed orders"})
		return
	}

	var lines []database.OrderLine
	if err := json.Unmarshal(order.Items, &lines); err != nil {
		log.Printf("ERROR: decoding order payload: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := receiptResponse{
		OrderID:     order.OrderID,
		TokenNumber: order.TokenNumber,
		UserID:      order.UserID,
		Timestamp:   order.Timestamp,
		TotalAmount: numericToString(order.TotalAmount),
		Lines:       make([]receiptLineResponse, 0, len(lines)),
	}
	if user, err := h.store.GetUser(r.Context(), order.UserID); err == nil {
		resp.UserName = user.Name
	}
	for _, l := range lines {
		subtotal := ""
		if price, err := decimal.NewFromString(l.Price); err == nil {
			subtotal = price.Mul(decimal.NewFromInt32(l.Qty)).StringFixed(2)
		}
		resp.Lines = append(resp.Lines, receiptLineResponse{
			ItemName: l.ItemName,
			Price:    l.Price,
			Qty:      l.Qty,
			Subtotal: subtotal,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type paymentLinkResponse struct {
	OrderID     int64  `json:"order_id"`
	TotalAmount string `json:"total_amount"`
	PaymentLink string `json:"payment_link"`
}

// PaymentLink returns a UPI deep link charging the order total.
func (h *OrdersHandler) PaymentLink(w http.ResponseWriter, r *http.Request) {
	order, ok := h.fetchOrderForCaller(w, r)
	if !ok {
		return
	}

	amount := numericToString(order.TotalAmount)
	link := fmt.Sprintf("upi://pay?pa=%s&am=%s&tn=Canteen%%20Order%%20%d", h.upiID, amount, order.OrderID)

	writeJSON(w, http.StatusOK, paymentLinkResponse{
		OrderID:     order.OrderID,
		TotalAmount: amount,
		PaymentLink: link,
	})
}

// fetchOrderForCaller loads the path order and enforces ownership:
// students only see their own orders, reported as not found to avoid
// leaking order existence.
func (h *OrdersHandler) fetchOrderForCaller(w http.ResponseWriter, r *http.Request) (database.Order, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authentication"})
		return database.Order{}, false
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return database.Order{}, false
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return database.Order{}, false
		}
		log.Printf("ERROR: fetching order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.Order{}, false
	}

	if claims.Role == enum.RoleStudent && order.UserID != claims.UserID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return database.Order{}, false
	}
	return order, true
}

func (h *OrdersHandler) writeOrderList(w http.ResponseWriter, orders []database.Order) {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp, err := toOrderResponse(order)
		if err != nil {
			log.Printf("ERROR: decoding order %d payload: %v", order.OrderID, err)
			continue
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isValidOrderStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func toOrderResponse(order database.Order) (orderResponse, error) {
	var lines []database.OrderLine
	if err := json.Unmarshal(order.Items, &lines); err != nil {
		return orderResponse{}, err
	}
	return orderResponse{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		Items:       lines,
		TotalAmount: numericToString(order.TotalAmount),
		TokenNumber: order.TokenNumber,
		Status:      order.Status,
		Timestamp:   order.Timestamp,
	}, nil
}
