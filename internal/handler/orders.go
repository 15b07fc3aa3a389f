package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/middleware"
	"github.com/rasa-pos/api/internal/service"
)

const (
	defaultOrderLimit = 100
	maxOrderLimit     = 500
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	UpdateOrder(ctx context.Context, req service.UpdateOrderRequest) (*service.UpdateOrderResult, error)
	DeleteOrder(ctx context.Context, orderID, actorID uuid.UUID) (database.Order, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrderDetail(ctx context.Context, id uuid.UUID) (database.GetOrderDetailRow, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.ListOrdersRow, error)
	ListOrderItemsByOrderIDs(ctx context.Context, orderIds []uuid.UUID) ([]database.ListOrderItemsByOrderIDsRow, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders behind Authenticate.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(enum.UserRoleCustomer, enum.UserRoleKasir, enum.UserRoleAdmin)).Post("/", h.Create)
	r.With(middleware.RequireRole(enum.UserRoleAdmin, enum.UserRoleKitchen, enum.UserRoleKasir)).Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(middleware.RequireRole(enum.UserRoleAdmin, enum.UserRoleKitchen, enum.UserRoleKasir)).Patch("/{id}", h.Update)
	r.With(middleware.RequireRole(enum.UserRoleAdmin)).Delete("/{id}", h.Delete)
}

// RegisterCustomerRoutes registers /customers/{id}/orders. Expected to be
// mounted behind Authenticate.
func (h *OrderHandler) RegisterCustomerRoutes(r chi.Router) {
	r.With(middleware.RequireSelfOrStaff("id")).Get("/customers/{id}/orders", h.ListByCustomer)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerID    string                   `json:"customer_id"`
	TableID       string                   `json:"table_id"`
	Status        string                   `json:"status"`
	PaymentStatus string                   `json:"paymentStatus"`
	PaymentMethod string                   `json:"paymentMethod"`
	Items         []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
}

type updateOrderRequest struct {
	Status        *string        `json:"status"`
	PaymentStatus *string        `json:"paymentStatus"`
	PaymentMethod *string        `json:"paymentMethod"`
	TableID       optionalString `json:"table_id"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	TableID       *uuid.UUID          `json:"table_id"`
	TableNumber   *int32              `json:"table_number"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"paymentStatus"`
	PaymentMethod *string             `json:"paymentMethod"`
	Subtotal      int64               `json:"subtotal"`
	Items         []orderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	MenuName   string    `json:"menu_name"`
	Category   string    `json:"category"`
	ImageURL   *string   `json:"image_url"`
	Quantity   int32     `json:"quantity"`
	UnitPrice  int64     `json:"unit_price"`
	Subtotal   int64     `json:"subtotal"`
}

func toOrderResponse(o database.Order, customerName string, tableNumber pgtype.Int4) orderResponse {
	return orderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		CustomerName:  customerName,
		TableID:       uuidPtr(o.TableID),
		TableNumber:   int4Ptr(tableNumber),
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: textPtr(o.PaymentMethod),
		Subtotal:      o.Subtotal,
		Items:         []orderItemResponse{},
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderItemResponse(it database.OrderItem, name, category string, image pgtype.Text) orderItemResponse {
	return orderItemResponse{
		ID:         it.ID,
		MenuItemID: it.MenuItemID,
		MenuName:   name,
		Category:   category,
		ImageURL:   textPtr(image),
		Quantity:   it.Quantity,
		UnitPrice:  it.UnitPrice,
		Subtotal:   it.UnitPrice * int64(it.Quantity),
	}
}

// --- Handlers ---

// Create places an order. Customers always order for themselves; staff must
// name the customer.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	customerID, ok := resolveCustomer(w, claims.Role, claims.UserID, req.CustomerID)
	if !ok {
		return
	}

	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateOrderItemRequest{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerID:    customerID,
		ActorID:       claims.UserID,
		TableID:       req.TableID,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	})
	if err != nil {
		writeServiceError(w, err, "create order")
		return
	}

	resp := toOrderResponse(result.Order, result.CustomerName, result.TableNumber)
	for _, it := range result.Items {
		resp.Items = append(resp.Items, toOrderItemResponse(it.Item, it.MenuItem.Name, it.MenuItem.Category, it.MenuItem.ImageUrl))
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List returns orders newest first, filtered by ?status= and ?payment_status=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if s := q.Get("status"); s != "" && !enum.IsOrderStatus(s) {
		writeError(w, http.StatusBadRequest, codeValidation, service.ErrInvalidStatus.Error())
		return
	}
	if s := q.Get("payment_status"); s != "" && !enum.IsPaymentStatus(s) {
		writeError(w, http.StatusBadRequest, codeValidation, service.ErrInvalidPaymentStatus.Error())
		return
	}

	h.list(w, r, database.ListOrdersParams{
		Status:        textFilter(q.Get("status")),
		PaymentStatus: textFilter(q.Get("payment_status")),
	})
}

// ListByCustomer returns one customer's orders, newest first.
func (h *OrderHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	h.list(w, r, database.ListOrdersParams{
		CustomerID: pgtype.UUID{Bytes: id, Valid: true},
	})
}

// Get returns a single order. Customers may only read their own.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.loadOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "order not found")
			return
		}
		writeInternal(w, err, "get order")
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if !enum.IsStaffRole(claims.Role) && resp.CustomerID != claims.UserID {
		writeError(w, http.StatusForbidden, codeForbidden, "access denied")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Update applies a partial status/payment/table update. Kitchen staff may
// only change status.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims.Role == enum.UserRoleKitchen && (req.PaymentStatus != nil || req.PaymentMethod != nil || req.TableID.Set) {
		writeError(w, http.StatusForbidden, codeForbidden, "kitchen may only change status")
		return
	}

	_, err := h.svc.UpdateOrder(r.Context(), service.UpdateOrderRequest{
		OrderID:       id,
		ActorID:       claims.UserID,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
		Table:         req.TableID.tableChange(),
	})
	if err != nil {
		writeServiceError(w, err, "update order")
		return
	}

	resp, err := h.loadOrder(r.Context(), id)
	if err != nil {
		writeInternal(w, err, "reload order")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes an order and its lines.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.svc.DeleteOrder(r.Context(), id, actorID(r)); err != nil {
		writeServiceError(w, err, "delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// resolveCustomer picks the customer an order or reservation is for.
// Customers get their own ID and may not name anyone else; staff must name
// the customer explicitly. ok is false when a response has been written.
func resolveCustomer(w http.ResponseWriter, role string, userID uuid.UUID, requested string) (uuid.UUID, bool) {
	if !enum.IsStaffRole(role) {
		if requested != "" && requested != userID.String() {
			writeError(w, http.StatusForbidden, codeForbidden, "customers may only act for themselves")
			return uuid.Nil, false
		}
		return userID, true
	}

	if requested == "" {
		writeErrorDetails(w, http.StatusBadRequest, codeValidation, "missing required fields: customer_id",
			map[string]any{"missing_fields": []string{"customer_id"}})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(requested)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, service.ErrInvalidCustomerID.Error())
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, params database.ListOrdersParams) {
	params.Limit = int32(parseLimit(r, defaultOrderLimit, maxOrderLimit))
	if s := r.URL.Query().Get("offset"); s != "" {
		offset, err := strconv.Atoi(s)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, codeValidation, "invalid offset")
			return
		}
		params.Offset = int32(offset)
	}

	resp, err := h.listOrders(r.Context(), params)
	if err != nil {
		writeInternal(w, err, "list orders")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// listOrders loads a page of orders and attaches their items with one
// extra query.
func (h *OrderHandler) listOrders(ctx context.Context, params database.ListOrdersParams) ([]orderResponse, error) {
	rows, err := h.store.ListOrders(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := make([]orderResponse, len(rows))
	if len(rows) == 0 {
		return resp, nil
	}
	ids := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	for i, row := range rows {
		resp[i] = toOrderResponse(row.Order, row.CustomerName, row.TableNumber)
		ids[i] = row.Order.ID
		index[row.Order.ID] = i
	}

	items, err := h.store.ListOrderItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		i := index[it.OrderItem.OrderID]
		resp[i].Items = append(resp[i].Items, toOrderItemResponse(it.OrderItem, it.MenuName, it.Category, it.ImageUrl))
	}
	return resp, nil
}

func (h *OrderHandler) loadOrder(ctx context.Context, id uuid.UUID) (orderResponse, error) {
	row, err := h.store.GetOrderDetail(ctx, id)
	if err != nil {
		return orderResponse{}, err
	}
	resp := toOrderResponse(row.Order, row.CustomerName, row.TableNumber)

	items, err := h.store.ListOrderItemsByOrderIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return orderResponse{}, err
	}
	for _, it := range items {
		resp.Items = append(resp.Items, toOrderItemResponse(it.OrderItem, it.MenuName, it.Category, it.ImageUrl))
	}
	return resp, nil
}
