package handler

import (
	"context"
	"errors"
	"net/http"
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

// ReservationServicer defines the service methods needed by reservation
// handlers. Satisfied by *service.ReservationService.
type ReservationServicer interface {
	CreateReservation(ctx context.Context, req service.CreateReservationRequest) (database.Reservation, error)
	UpdateReservation(ctx context.Context, req service.UpdateReservationRequest) (database.Reservation, error)
	DeleteReservation(ctx context.Context, id, actorID uuid.UUID) (database.Reservation, error)
}

// ReservationStore defines the read queries used by reservation handlers.
// Satisfied by *database.Queries.
type ReservationStore interface {
	GetReservationDetail(ctx context.Context, id uuid.UUID) (database.GetReservationDetailRow, error)
	ListReservations(ctx context.Context, arg database.ListReservationsParams) ([]database.ListReservationsRow, error)
}

// ReservationHandler handles reservation endpoints.
type ReservationHandler struct {
	svc   ReservationServicer
	store ReservationStore
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(svc ReservationServicer, store ReservationStore) *ReservationHandler {
	return &ReservationHandler{svc: svc, store: store}
}

// RegisterRoutes registers reservation endpoints. Expected to be mounted at
// /reservations behind Authenticate.
func (h *ReservationHandler) RegisterRoutes(r chi.Router) {
	cashier := middleware.RequireRole(enum.UserRoleAdmin, enum.UserRoleKasir)

	r.With(middleware.RequireRole(enum.UserRoleCustomer, enum.UserRoleAdmin, enum.UserRoleKasir)).Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(cashier).Patch("/{id}", h.Update)
	r.With(cashier).Put("/{id}", h.Update)
	r.With(cashier).Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createReservationRequest struct {
	CustomerID      string `json:"customer_id"`
	TableID         string `json:"table_id"`
	GuestCount      *int64 `json:"guest_count"`
	ReservationDate string `json:"reservation_date"`
	ReservationTime string `json:"reservation_time"`
}

type updateReservationRequest struct {
	TableID         optionalString `json:"table_id"`
	GuestCount      *int64         `json:"guest_count"`
	ReservationDate *string        `json:"reservation_date"`
	ReservationTime *string        `json:"reservation_time"`
	Status          *string        `json:"status"`
}

type reservationResponse struct {
	ID              uuid.UUID  `json:"id"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	CustomerName    string     `json:"customer_name,omitempty"`
	TableID         *uuid.UUID `json:"table_id"`
	TableNumber     *int32     `json:"table_number,omitempty"`
	GuestCount      int32      `json:"guest_count"`
	ReservationDate string     `json:"reservation_date"`
	ReservationTime string     `json:"reservation_time"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toReservationResponse(res database.Reservation, customerName string, tableNumber pgtype.Int4) reservationResponse {
	return reservationResponse{
		ID:              res.ID,
		CustomerID:      res.CustomerID,
		CustomerName:    customerName,
		TableID:         uuidPtr(res.TableID),
		TableNumber:     int4Ptr(tableNumber),
		GuestCount:      res.GuestCount,
		ReservationDate: res.ReservationDate.Time.Format("2006-01-02"),
		ReservationTime: res.ReservationTime,
		Status:          res.Status,
		CreatedAt:       res.CreatedAt,
		UpdatedAt:       res.UpdatedAt,
	}
}

// --- Handlers ---

// Create books a table. Customers book for themselves; staff name the
// customer.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req createReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	customerID := req.CustomerID
	if !enum.IsStaffRole(claims.Role) {
		if customerID != "" && customerID != claims.UserID.String() {
			writeError(w, http.StatusForbidden, codeForbidden, "customers may only act for themselves")
			return
		}
		customerID = claims.UserID.String()
	}

	res, err := h.svc.CreateReservation(r.Context(), service.CreateReservationRequest{
		ActorID:         claims.UserID,
		CustomerID:      customerID,
		GuestCount:      req.GuestCount,
		ReservationDate: req.ReservationDate,
		ReservationTime: req.ReservationTime,
		TableID:         req.TableID,
	})
	if err != nil {
		writeServiceError(w, err, "create reservation")
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(res, "", pgtype.Int4{}))
}

// List returns reservations, newest date and time first. Customers only see
// their own; staff may filter with ?customer_id=.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var params database.ListReservationsParams
	if s := r.URL.Query().Get("customer_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, service.ErrInvalidCustomerID.Error())
			return
		}
		params.CustomerID = pgtype.UUID{Bytes: id, Valid: true}
	}
	if !enum.IsStaffRole(claims.Role) {
		if params.CustomerID.Valid && uuid.UUID(params.CustomerID.Bytes) != claims.UserID {
			writeError(w, http.StatusForbidden, codeForbidden, "access denied")
			return
		}
		params.CustomerID = pgtype.UUID{Bytes: claims.UserID, Valid: true}
	}

	rows, err := h.store.ListReservations(r.Context(), params)
	if err != nil {
		writeInternal(w, err, "list reservations")
		return
	}

	resp := make([]reservationResponse, len(rows))
	for i, row := range rows {
		resp[i] = toReservationResponse(row.Reservation, row.CustomerName, row.TableNumber)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single reservation to staff or its owner.
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	row, err := h.store.GetReservationDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "reservation not found")
			return
		}
		writeInternal(w, err, "get reservation")
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if !enum.IsStaffRole(claims.Role) && row.Reservation.CustomerID != claims.UserID {
		writeError(w, http.StatusForbidden, codeForbidden, "access denied")
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(row.Reservation, row.CustomerName, row.TableNumber))
}

// Update applies a partial update; table capacity is checked again.
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req updateReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	res, err := h.svc.UpdateReservation(r.Context(), service.UpdateReservationRequest{
		ID:              id,
		ActorID:         actorID(r),
		GuestCount:      req.GuestCount,
		ReservationDate: req.ReservationDate,
		ReservationTime: req.ReservationTime,
		Status:          req.Status,
		Table:           req.TableID.tableChange(),
	})
	if err != nil {
		writeServiceError(w, err, "update reservation")
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res, "", pgtype.Int4{}))
}

// Delete removes a reservation.
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.svc.DeleteReservation(r.Context(), id, actorID(r)); err != nil {
		writeServiceError(w, err, "delete reservation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
