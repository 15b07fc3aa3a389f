package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/activity"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/service"
)

// TableStore defines the database methods needed by table handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStore interface {
	ListTables(ctx context.Context) ([]database.Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.Table, error)
	DeleteTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.ListOrdersRow, error)
	ListReservations(ctx context.Context, arg database.ListReservationsParams) ([]database.ListReservationsRow, error)
}

// TableHandler handles dining table endpoints.
type TableHandler struct {
	store    TableStore
	activity service.ActivityRecorder
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore, recorder service.ActivityRecorder) *TableHandler {
	return &TableHandler{store: store, activity: recorder}
}

// RegisterRoutes registers the read endpoints. Expected to be mounted at
// /tables behind Authenticate.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers the write endpoints behind admin-only
// middleware.
func (h *TableHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createTableRequest struct {
	Number   *int32 `json:"number"`
	Capacity *int32 `json:"capacity"`
	Status   string `json:"status"`
}

type updateTableRequest struct {
	Number   *int32  `json:"number"`
	Capacity *int32  `json:"capacity"`
	Status   *string `json:"status"`
}

type tableResponse struct {
	ID        uuid.UUID `json:"id"`
	Number    int32     `json:"number"`
	Capacity  int32     `json:"capacity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type tableDetailResponse struct {
	tableResponse
	Orders       []orderResponse       `json:"orders"`
	Reservations []reservationResponse `json:"reservations"`
}

func toTableResponse(t database.Table) tableResponse {
	return tableResponse{
		ID:        t.ID,
		Number:    t.Number,
		Capacity:  t.Capacity,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// --- Handlers ---

// List returns every table ordered by number.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		writeInternal(w, err, "list tables")
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a table with its orders and reservations.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	table, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "table not found")
			return
		}
		writeInternal(w, err, "get table")
		return
	}

	filter := pgtype.UUID{Bytes: id, Valid: true}
	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{TableID: filter, Limit: maxOrderLimit})
	if err != nil {
		writeInternal(w, err, "list table orders")
		return
	}
	reservations, err := h.store.ListReservations(r.Context(), database.ListReservationsParams{TableID: filter})
	if err != nil {
		writeInternal(w, err, "list table reservations")
		return
	}

	resp := tableDetailResponse{
		tableResponse: toTableResponse(table),
		Orders:        make([]orderResponse, len(orders)),
		Reservations:  make([]reservationResponse, len(reservations)),
	}
	for i, o := range orders {
		resp.Orders[i] = toOrderResponse(o.Order, o.CustomerName, o.TableNumber)
	}
	for i, res := range reservations {
		resp.Reservations[i] = toReservationResponse(res.Reservation, res.CustomerName, res.TableNumber)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a table. Status defaults to Tersedia.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	if req.Number == nil || req.Capacity == nil {
		writeError(w, http.StatusBadRequest, codeValidation, "number and capacity are required")
		return
	}
	if *req.Number <= 0 || *req.Capacity <= 0 {
		writeError(w, http.StatusBadRequest, codeValidation, "number and capacity must be positive")
		return
	}
	status := req.Status
	if status == "" {
		status = enum.TableStatusAvailable
	}
	if !enum.IsTableStatus(status) {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid status")
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		Number:   *req.Number,
		Capacity: *req.Capacity,
		Status:   status,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, codeConflict, "table number already exists")
			return
		}
		writeInternal(w, err, "create table")
		return
	}

	h.record(r, enum.ActionCreate, table.ID, fmt.Sprintf("Tambah meja: %d", table.Number))
	writeJSON(w, http.StatusCreated, toTableResponse(table))
}

// Update applies a partial update.
func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req updateTableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if req.Number == nil && req.Capacity == nil && req.Status == nil {
		writeError(w, http.StatusBadRequest, codeValidation, service.ErrNoFields.Error())
		return
	}

	current, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "table not found")
			return
		}
		writeInternal(w, err, "get table")
		return
	}

	params := database.UpdateTableParams{
		ID:       current.ID,
		Number:   current.Number,
		Capacity: current.Capacity,
		Status:   current.Status,
	}
	if req.Number != nil {
		if *req.Number <= 0 {
			writeError(w, http.StatusBadRequest, codeValidation, "number must be positive")
			return
		}
		params.Number = *req.Number
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			writeError(w, http.StatusBadRequest, codeValidation, "capacity must be positive")
			return
		}
		params.Capacity = *req.Capacity
	}
	if req.Status != nil {
		if !enum.IsTableStatus(*req.Status) {
			writeError(w, http.StatusBadRequest, codeValidation, "invalid status")
			return
		}
		params.Status = *req.Status
	}

	table, err := h.store.UpdateTable(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "table not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, codeConflict, "table number already exists")
			return
		}
		writeInternal(w, err, "update table")
		return
	}

	h.record(r, enum.ActionUpdate, table.ID, fmt.Sprintf("Update meja: %d", table.Number))
	writeJSON(w, http.StatusOK, toTableResponse(table))
}

// Delete removes a table. Orders and reservations keep their rows with the
// table reference cleared.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	table, err := h.store.DeleteTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "table not found")
			return
		}
		writeInternal(w, err, "delete table")
		return
	}

	h.record(r, enum.ActionDelete, table.ID, fmt.Sprintf("Hapus meja: %d", table.Number))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TableHandler) record(r *http.Request, action string, id uuid.UUID, msg string) {
	h.activity.Record(r.Context(), activity.Entry{
		ActorID:  actorID(r),
		Action:   action,
		Target:   enum.TargetTable,
		TargetID: id,
		Message:  msg,
	})
}
