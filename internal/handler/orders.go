package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/MarcusAlienx/casanala/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (database.Order, error)
	GetOrders(ctx context.Context, filter service.OrderFilter) ([]database.Order, error)
	GetOrder(ctx context.Context, id string) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (database.Order, error)
	StartPreparing(ctx context.Context, id string) (database.Order, error)
	MarkReady(ctx context.Context, id string) (database.Order, error)
	Cancel(ctx context.Context, id string) (database.Order, error)
	ListView(ctx context.Context, v service.View) ([]database.Order, error)
	KitchenBoard(ctx context.Context) (service.KitchenBoard, error)
}

// OrderHandler handles order creation and the staff order views.
type OrderHandler struct {
	svc OrderServicer
	log *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// RegisterPublicRoutes registers the customer-facing order endpoint.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
}

// RegisterRoutes registers the shared staff order endpoints.
// Expected to be mounted at /staff/orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/cancel", h.Cancel)
}

// RegisterKitchenRoutes registers the kitchen board. Expected at /staff/kitchen.
func (h *OrderHandler) RegisterKitchenRoutes(r chi.Router) {
	r.Get("/", h.Kitchen)
	r.Post("/orders/{id}/start", h.StartPreparing)
	r.Post("/orders/{id}/ready", h.MarkReady)
}

// --- Request / Response types ---

type orderItemPayload struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int32           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type customerPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Table   string `json:"table,omitempty"`
}

type createOrderRequest struct {
	Items      []orderItemPayload `json:"items"`
	Total      decimal.Decimal    `json:"total"`
	Type       string             `json:"type"`
	Customer   customerPayload    `json:"customer"`
	TimeWindow string             `json:"timeWindow"`
}

func (req createOrderRequest) toService() service.CreateOrderRequest {
	items := make([]service.OrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.OrderItemRequest{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.Price,
		}
	}
	return service.CreateOrderRequest{
		Items: items,
		Total: req.Total,
		Type:  req.Type,
		Customer: service.CustomerRequest{
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
			Notes:   req.Customer.Notes,
			Table:   req.Customer.Table,
		},
		TimeWindow: req.TimeWindow,
	}
}

type orderResponse struct {
	ID     string             `json:"id"`
	Items  []orderItemPayload `json:"items"`
	Total  decimal.Decimal    `json:"total"`
	Type   enum.OrderType     `json:"type"`
	Status enum.OrderStatus   `json:"status"`
	// NextStatuses are the options a status selector may offer.
	NextStatuses []enum.OrderStatus `json:"nextStatuses"`
	Customer     customerPayload    `json:"customer"`
	TimeWindow   string             `json:"timeWindow,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func toOrderResponse(o database.Order) orderResponse {
	items := make([]orderItemPayload, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemPayload{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      it.UnitPrice,
		}
	}
	return orderResponse{
		ID:     o.ID,
		Items:  items,
		Total:  o.Total,
		Type:         o.Type,
		Status:       o.Status,
		NextStatuses: append([]enum.OrderStatus{}, enum.NextStatuses(o.Type, o.Status)...),
		Customer: customerPayload{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
			Notes:   o.Customer.Notes,
			Table:   o.Customer.Table,
		},
		TimeWindow: o.TimeWindow,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func toOrderResponses(orders []database.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	return resp
}

// actionResponse is the {success, message} envelope of order mutations.
type actionResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	OrderID string         `json:"orderId,omitempty"`
	Order   *orderResponse `json:"order,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type kitchenResponse struct {
	Pending   []orderResponse `json:"pending"`
	Preparing []orderResponse `json:"preparing"`
}

// --- Handlers ---

// Create validates and stores a raw order payload.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, actionResponse{Message: "Cuerpo de la solicitud inválido."})
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), req.toService())
	if err != nil {
		if fields, ok := validationFields(err); ok {
			validationFailed(w, fields)
			return
		}
		h.log.Error("create order", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, actionResponse{Message: "Error interno al crear el pedido."})
		return
	}

	resp := toOrderResponse(order)
	writeJSON(w, http.StatusCreated, actionResponse{
		Success: true,
		Message: "Pedido creado exitosamente.",
		OrderID: order.ID,
		Order:   &resp,
	})
}

// List returns orders filtered by ?status=a,b and ?type=t, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter service.OrderFilter

	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st, err := enum.ParseOrderStatus(strings.TrimSpace(s))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
				return
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := enum.ParseOrderType(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid type filter"})
			return
		}
		filter.Type = t
	}

	orders, err := h.svc.GetOrders(r.Context(), filter)
	if err != nil {
		internalError(w, h.log, "list orders", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		internalError(w, h.log, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateStatus applies any status the lifecycle allows from the current one.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, actionResponse{Message: "Cuerpo de la solicitud inválido."})
		return
	}
	if id == "" || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, actionResponse{Message: "ID del pedido y nuevo estado son requeridos."})
		return
	}

	order, err := h.svc.UpdateOrderStatus(r.Context(), id, req.Status)
	h.respondTransition(w, order, err)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id"))
	h.respondTransition(w, order, err)
}

func (h *OrderHandler) StartPreparing(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.StartPreparing(r.Context(), chi.URLParam(r, "id"))
	h.respondTransition(w, order, err)
}

func (h *OrderHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.MarkReady(r.Context(), chi.URLParam(r, "id"))
	h.respondTransition(w, order, err)
}

// respondTransition maps lifecycle errors onto 400/404/409/500.
func (h *OrderHandler) respondTransition(w http.ResponseWriter, order database.Order, err error) {
	var terr *service.TransitionError
	switch {
	case err == nil:
		resp := toOrderResponse(order)
		writeJSON(w, http.StatusOK, actionResponse{
			Success: true,
			Message: "Estado del pedido actualizado.",
			Order:   &resp,
		})
	case errors.Is(err, service.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, actionResponse{Message: "Estado inválido."})
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, actionResponse{Message: "Pedido no encontrado."})
	case errors.As(err, &terr):
		writeJSON(w, http.StatusConflict, actionResponse{
			Message: "No se puede cambiar el pedido de " + string(terr.From) + " a " + string(terr.To) + ".",
		})
	case errors.Is(err, service.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, actionResponse{Message: "El pedido cambió de estado, intenta de nuevo."})
	default:
		h.log.Error("update order status", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, actionResponse{Message: "Error al actualizar el estado del pedido."})
	}
}

// Kitchen returns the pending and preparing columns.
func (h *OrderHandler) Kitchen(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.KitchenBoard(r.Context())
	if err != nil {
		internalError(w, h.log, "kitchen board", err)
		return
	}
	writeJSON(w, http.StatusOK, kitchenResponse{
		Pending:   toOrderResponses(board.Pending),
		Preparing: toOrderResponses(board.Preparing),
	})
}

// View returns a handler listing the orders of v.
func (h *OrderHandler) View(v service.View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := h.svc.ListView(r.Context(), v)
		if err != nil {
			internalError(w, h.log, "list "+string(v)+" view", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"view":   v,
			"count":  len(orders),
			"orders": toOrderResponses(orders),
		})
	}
}
