package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryStore defines the store methods needed by inventory handlers.
// Satisfied by *database.Queries and *docstore.Store; narrow interface for testability.
type InventoryStore interface {
	ListInventoryItems(ctx context.Context) ([]database.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error)
	UpdateInventoryStock(ctx context.Context, arg database.UpdateInventoryStockParams) (database.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error
}

// InventoryHandler handles inventory endpoints.
type InventoryHandler struct {
	store InventoryStore
	log   *zap.Logger
}

func NewInventoryHandler(store InventoryStore, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{store: store, log: log}
}

// RegisterRoutes registers inventory endpoints. Expected at /admin/inventory.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/stock", h.UpdateStock)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type inventoryItemRequest struct {
	Name              string           `json:"name"`
	Unit              string           `json:"unit"`
	Stock             *decimal.Decimal `json:"stock"`
	LowStockThreshold *decimal.Decimal `json:"lowStockThreshold"`
	Supplier          string           `json:"supplier"`
}

func (req *inventoryItemRequest) validate() map[string]string {
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	req.Supplier = strings.TrimSpace(req.Supplier)

	errs := map[string]string{}
	if utf8.RuneCountInString(req.Name) < 2 {
		errs["name"] = "El nombre es requerido."
	}
	if req.Unit == "" {
		errs["unit"] = "La unidad es requerida."
	}
	if req.Stock == nil || req.Stock.IsNegative() {
		errs["stock"] = "El stock no puede ser negativo."
	}
	if req.LowStockThreshold != nil && req.LowStockThreshold.IsNegative() {
		errs["lowStockThreshold"] = "El umbral no puede ser negativo."
	}
	return errs
}

type updateStockRequest struct {
	Stock *decimal.Decimal `json:"stock"`
}

type inventoryItemResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Unit              string           `json:"unit"`
	Stock             decimal.Decimal  `json:"stock"`
	LowStockThreshold *decimal.Decimal `json:"lowStockThreshold,omitempty"`
	Supplier          string           `json:"supplier,omitempty"`
	LowStock          bool             `json:"lowStock"`
	LastUpdated       time.Time        `json:"lastUpdated"`
}

func toInventoryItemResponse(it database.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ID:                it.ID,
		Name:              it.Name,
		Unit:              it.Unit,
		Stock:             it.Stock,
		LowStockThreshold: it.LowStockThreshold,
		Supplier:          it.Supplier,
		LowStock:          it.IsLowStock(),
		LastUpdated:       it.LastUpdated,
	}
}

// --- Handlers ---

// List returns inventory items by name; ?low_stock=true keeps only those at
// or below their threshold.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListInventoryItems(r.Context())
	if err != nil {
		internalError(w, h.log, "list inventory items", err)
		return
	}

	lowOnly := r.URL.Query().Get("low_stock") == "true"
	resp := make([]inventoryItemResponse, 0, len(items))
	for _, it := range items {
		if lowOnly && !it.IsLowStock() {
			continue
		}
		resp = append(resp, toInventoryItemResponse(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	item, err := h.store.CreateInventoryItem(r.Context(), database.CreateInventoryItemParams{
		Name:              req.Name,
		Unit:              req.Unit,
		Stock:             *req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		Supplier:          req.Supplier,
	})
	if err != nil {
		internalError(w, h.log, "create inventory item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInventoryItemResponse(item))
}

func (h *InventoryHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req updateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Stock == nil || req.Stock.IsNegative() {
		validationFailed(w, map[string]string{"stock": "El stock no puede ser negativo."})
		return
	}

	item, err := h.store.UpdateInventoryStock(r.Context(), database.UpdateInventoryStockParams{
		ID:    chi.URLParam(r, "id"),
		Stock: *req.Stock,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
			return
		}
		internalError(w, h.log, "update inventory stock", err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryItemResponse(item))
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteInventoryItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
			return
		}
		internalError(w, h.log, "delete inventory item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
