package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutServicer defines the checkout methods needed by cart handlers.
// Satisfied by *service.CheckoutService; narrow interface for testability.
type CheckoutServicer interface {
	Quote(ctx context.Context, cart service.Cart, orderType string) (service.Quote, error)
	Checkout(ctx context.Context, cart service.Cart, form service.CheckoutForm) (service.Confirmation, error)
	PlaceTableOrder(ctx context.Context, cart service.Cart, table, notes string) (database.Order, error)
	Zone() *service.DeliveryZone
}

// CheckoutHandler prices carts and turns them into orders.
type CheckoutHandler struct {
	svc CheckoutServicer
	log *zap.Logger
}

func NewCheckoutHandler(svc CheckoutServicer, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, log: log}
}

// RegisterRoutes registers the public cart endpoints.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/cart/quote", h.Quote)
	r.Post("/checkout", h.Checkout)
	r.Get("/delivery-zone", h.DeliveryZone)
}

// --- Request / Response types ---

type quoteRequest struct {
	service.Cart
	Type string `json:"type"`
}

// checkoutRequest is the cart plus the flat checkout form.
type checkoutRequest struct {
	service.Cart
	service.CheckoutForm
}

type tableOrderRequest struct {
	service.Cart
	Table string `json:"table"`
	Notes string `json:"notes"`
}

type deliveryZoneResponse struct {
	Center     service.Location `json:"center"`
	RadiusKm   float64          `json:"radiusKm"`
	DistanceKm *float64         `json:"distanceKm,omitempty"`
	Covered    *bool            `json:"covered,omitempty"`
}

// --- Handlers ---

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	q, err := h.svc.Quote(r.Context(), req.Cart, req.Type)
	if err != nil {
		h.writeCheckoutError(w, "quote cart", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Checkout validates the form and places the order. The client keeps its
// cart on any non-2xx answer.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	conf, err := h.svc.Checkout(r.Context(), req.Cart, req.CheckoutForm)
	if err != nil {
		h.writeCheckoutError(w, "checkout", err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

// PlaceTableOrder submits a waiter's dine-in order. Mounted under /staff.
func (h *CheckoutHandler) PlaceTableOrder(w http.ResponseWriter, r *http.Request) {
	var req tableOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.PlaceTableOrder(r.Context(), req.Cart, req.Table, req.Notes)
	if err != nil {
		h.writeCheckoutError(w, "place table order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// DeliveryZone describes the coverage circle and, given ?lat=&lng=, whether
// that point is covered.
func (h *CheckoutHandler) DeliveryZone(w http.ResponseWriter, r *http.Request) {
	zone := h.svc.Zone()
	if zone == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "delivery zone not configured"})
		return
	}

	resp := deliveryZoneResponse{Center: zone.Center, RadiusKm: zone.RadiusKm}

	q := r.URL.Query()
	if q.Get("lat") != "" || q.Get("lng") != "" {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		loc := service.Location{Lat: lat, Lng: lng}
		if errLat != nil || errLng != nil || !loc.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
			return
		}
		d := zone.DistanceKm(loc)
		covered := d <= zone.RadiusKm
		resp.DistanceKm = &d
		resp.Covered = &covered
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, op string, err error) {
	if fields, ok := validationFields(err); ok {
		validationFailed(w, fields)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "request timed out"})
		return
	}
	internalError(w, h.log, op, err)
}
