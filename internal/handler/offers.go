package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/canteen-pay/api/internal/database"
	"github.com/canteen-pay/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type OfferStore interface {
	CreateOffer(ctx context.Context, arg database.CreateOfferParams) (database.Offer, error)
	GetOffer(ctx context.Context, offerID int64) (database.Offer, error)
	ListOffers(ctx context.Context) ([]database.ListOffersRow, error)
	UpdateOffer(ctx context.Context, arg database.UpdateOfferParams) (database.Offer, error)
	DeleteOffer(ctx context.Context, offerID int64) (int64, error)
	GetMenuItem(ctx context.Context, itemID int64) (database.MenuItem, error)
}

type OfferHandler struct {
	store OfferStore
}

func NewOfferHandler(store OfferStore) *OfferHandler {
	return &OfferHandler{store: store}
}

type offerRequest struct {
	OfferName     string `json:"offer_name"`
	ItemID        *int64 `json:"item_id"`
	DiscountType  string `json:"discount_type"`
	DiscountValue string `json:"discount_value"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DayOfWeek     string `json:"day_of_week"`
	Active        *bool  `json:"active"`
}

type offerResponse struct {
	OfferID       int64  `json:"offer_id"`
	OfferName     string `json:"offer_name"`
	ItemID        *int64 `json:"item_id"`
	ItemName      string `json:"item_name,omitempty"`
	DiscountType  string `json:"discount_type"`
	DiscountValue string `json:"discount_value"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	DayOfWeek     string `json:"day_of_week,omitempty"`
	Active        bool   `json:"active"`
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, errMsg := h.offerParams(r.Context(), req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}

	offer, err := h.store.CreateOffer(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: creating offer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOfferResponse(offer, ""))
}

func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListOffers(r.Context())
	if err != nil {
		log.Printf("ERROR: listing offers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]offerResponse, 0, len(rows))
	for _, row := range rows {
		itemName := ""
		if row.ItemName.Valid {
			itemName = row.ItemName.String
		}
		out = append(out, toOfferResponse(row.Offer, itemName))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request) {
	offerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offer id"})
		return
	}

	offer, err := h.store.GetOffer(r.Context(), offerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "offer not found"})
			return
		}
		log.Printf("ERROR: fetching offer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOfferResponse(offer, ""))
}

func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	offerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offer id"})
		return
	}

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, errMsg := h.offerParams(r.Context(), req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}

	offer, err := h.store.UpdateOffer(r.Context(), database.UpdateOfferParams{
		OfferName:     params.OfferName,
		ItemID:        params.ItemID,
		DiscountType:  params.DiscountType,
		DiscountValue: params.DiscountValue,
		StartDate:     params.StartDate,
		EndDate:       params.EndDate,
		DayOfWeek:     params.DayOfWeek,
		Active:        params.Active,
		OfferID:       offerID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "offer not found"})
			return
		}
		log.Printf("ERROR: updating offer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOfferResponse(offer, ""))
}

func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	offerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offer id"})
		return
	}

	if _, err := h.store.DeleteOffer(r.Context(), offerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "offer not found"})
			return
		}
		log.Printf("ERROR: deleting offer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// offerParams validates and converts a request into insert parameters,
// returning a client-facing message on bad input.
func (h *OfferHandler) offerParams(ctx context.Context, req offerRequest) (database.CreateOfferParams, string) {
	var params database.CreateOfferParams

	if req.OfferName == "" {
		return params, "offer_name is required"
	}

	if req.DiscountType != enum.DiscountTypePercentage && req.DiscountType != enum.DiscountTypeFixed {
		return params, "discount_type must be PERCENTAGE or FIXED"
	}

	value, err := decimal.NewFromString(req.DiscountValue)
	if err != nil {
		return params, "discount_value must be a decimal string"
	}
	if value.IsNegative() {
		return params, "discount_value must not be negative"
	}
	if req.DiscountType == enum.DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return params, "percentage discount must not exceed 100"
	}

	if req.ItemID != nil {
		if _, err := h.store.GetMenuItem(ctx, *req.ItemID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return params, "item_id does not match a menu item"
			}
			log.Printf("ERROR: checking offer item: %v", err)
			return params, "item_id could not be verified"
		}
		params.ItemID = pgtype.Int8{Int64: *req.ItemID, Valid: true}
	}

	if req.StartDate != "" {
		start, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return params, "start_date must be formatted YYYY-MM-DD"
		}
		params.StartDate = pgtype.Date{Time: start, Valid: true}
	}
	if req.EndDate != "" {
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return params, "end_date must be formatted YYYY-MM-DD"
		}
		params.EndDate = pgtype.Date{Time: end, Valid: true}
	}
	if params.StartDate.Valid && params.EndDate.Valid && params.EndDate.Time.Before(params.StartDate.Time) {
		return params, "end_date must not precede start_date"
	}

	if req.DayOfWeek != "" {
		if !isValidDayCode(req.DayOfWeek) {
			return params, "day_of_week must be one of MON, TUE, WED, THU, FRI, SAT, SUN"
		}
		params.DayOfWeek = pgtype.Text{String: req.DayOfWeek, Valid: true}
	}

	params.OfferName = req.OfferName
	params.DiscountType = req.DiscountType
	params.DiscountValue = decimalToNumeric(value)
	params.Active = true
	if req.Active != nil {
		params.Active = *req.Active
	}
	return params, ""
}

func isValidDayCode(day string) bool {
	for _, code := range enum.DayCodes {
		if day == code {
			return true
		}
	}
	return false
}

func toOfferResponse(o database.Offer, itemName string) offerResponse {
	resp := offerResponse{
		OfferID:       o.OfferID,
		OfferName:     o.OfferName,
		ItemName:      itemName,
		DiscountType:  o.DiscountType,
		DiscountValue: numericToString(o.DiscountValue),
		Active:        o.Active,
	}
	if o.ItemID.Valid {
		id := o.ItemID.Int64
		resp.ItemID = &id
	}
	if o.StartDate.Valid {
		resp.StartDate = o.StartDate.Time.Format(dateLayout)
	}
	if o.EndDate.Valid {
		resp.EndDate = o.EndDate.Time.Format(dateLayout)
	}
	if o.DayOfWeek.Valid {
		resp.DayOfWeek = o.DayOfWeek.String
	}
	return resp
}
