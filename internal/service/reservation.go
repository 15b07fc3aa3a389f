package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/activity"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
)

var reservationTimePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ReservationStore defines the DB methods needed by the reservation service.
// Satisfied by *database.Queries.
type ReservationStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	CreateReservation(ctx context.Context, arg database.CreateReservationParams) (database.Reservation, error)
	GetReservationForUpdate(ctx context.Context, id uuid.UUID) (database.Reservation, error)
	UpdateReservation(ctx context.Context, arg database.UpdateReservationParams) (database.Reservation, error)
	DeleteReservation(ctx context.Context, id uuid.UUID) (database.Reservation, error)
}

// NewReservationStore creates a ReservationStore bound to a pool or tx.
type NewReservationStore func(db database.DBTX) ReservationStore

// CreateReservationRequest mirrors the request body. Pointer and empty
// string fields are reported as missing when absent.
type CreateReservationRequest struct {
	ActorID         uuid.UUID
	CustomerID      string
	GuestCount      *int64
	ReservationDate string
	ReservationTime string
	TableID         string
}

// UpdateReservationRequest carries a partial update. Nil fields are left
// alone. Capacity is checked again only when the guest count or table changes.
type UpdateReservationRequest struct {
	ID              uuid.UUID
	ActorID         uuid.UUID
	GuestCount      *int64
	ReservationDate *string
	ReservationTime *string
	Status          *string
	Table           TableChange
}

// ReservationService validates and persists reservations.
type ReservationService struct {
	store    ReservationStore
	pool     TxBeginner
	newStore NewReservationStore
	activity ActivityRecorder
}

func NewReservationService(store ReservationStore, pool TxBeginner, newStore NewReservationStore, recorder ActivityRecorder) *ReservationService {
	return &ReservationService{store: store, pool: pool, newStore: newStore, activity: recorder}
}

// CreateReservation validates the request and stores it with status pending.
func (s *ReservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (database.Reservation, error) {
	var missing []string
	if strings.TrimSpace(req.CustomerID) == "" {
		missing = append(missing, "customer_id")
	}
	if req.GuestCount == nil {
		missing = append(missing, "guest_count")
	}
	if strings.TrimSpace(req.ReservationDate) == "" {
		missing = append(missing, "reservation_date")
	}
	if strings.TrimSpace(req.ReservationTime) == "" {
		missing = append(missing, "reservation_time")
	}
	if len(missing) > 0 {
		return database.Reservation{}, &MissingFieldsError{Fields: missing}
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return database.Reservation{}, ErrInvalidCustomerID
	}
	guests, err := validateGuestCount(*req.GuestCount)
	if err != nil {
		return database.Reservation{}, err
	}
	date, err := parseReservationDate(req.ReservationDate)
	if err != nil {
		return database.Reservation{}, err
	}
	clock, err := normalizeReservationTime(req.ReservationTime)
	if err != nil {
		return database.Reservation{}, err
	}
	tableID, err := parseOptionalTable(req.TableID)
	if err != nil {
		return database.Reservation{}, err
	}

	customer, err := s.store.GetUserByID(ctx, customerID)
	if err != nil {
		return database.Reservation{}, notFound(err, ErrCustomerNotFound, "get customer")
	}
	if err := checkTable(ctx, s.store, tableID, guests); err != nil {
		return database.Reservation{}, err
	}

	res, err := s.store.CreateReservation(ctx, database.CreateReservationParams{
		CustomerID:      customer.ID,
		TableID:         tableID,
		GuestCount:      guests,
		ReservationDate: date,
		ReservationTime: clock,
		Status:          enum.ReservationStatusPending,
	})
	if err != nil {
		return database.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:  req.ActorID,
		Action:   enum.ActionCreate,
		Target:   enum.TargetReservation,
		TargetID: res.ID,
		Message: fmt.Sprintf("Reservasi %s %s untuk %s (%d tamu) dibuat",
			date.Time.Format("2006-01-02"), clock, customer.Name, guests),
	})

	return res, nil
}

// UpdateReservation applies a partial update. The row stays locked from
// the read to the write so concurrent edits cannot overwrite each other.
func (s *ReservationService) UpdateReservation(ctx context.Context, req UpdateReservationRequest) (database.Reservation, error) {
	if req.GuestCount == nil && req.ReservationDate == nil && req.ReservationTime == nil && req.Status == nil && !req.Table.Set {
		return database.Reservation{}, ErrNoFields
	}

	var (
		guests  int32
		date    pgtype.Date
		clock   string
		tableID pgtype.UUID
		err     error
	)
	if req.GuestCount != nil {
		if guests, err = validateGuestCount(*req.GuestCount); err != nil {
			return database.Reservation{}, err
		}
	}
	if req.ReservationDate != nil {
		if date, err = parseReservationDate(*req.ReservationDate); err != nil {
			return database.Reservation{}, err
		}
	}
	if req.ReservationTime != nil {
		if clock, err = normalizeReservationTime(*req.ReservationTime); err != nil {
			return database.Reservation{}, err
		}
	}
	if req.Status != nil && !enum.IsReservationStatus(*req.Status) {
		return database.Reservation{}, ErrInvalidStatus
	}
	if req.Table.Set {
		if tableID, err = parseOptionalTable(req.Table.ID); err != nil {
			return database.Reservation{}, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Reservation{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetReservationForUpdate(ctx, req.ID)
	if err != nil {
		return database.Reservation{}, notFound(err, ErrReservationNotFound, "get reservation")
	}

	params := database.UpdateReservationParams{
		ID:              current.ID,
		TableID:         current.TableID,
		GuestCount:      current.GuestCount,
		ReservationDate: current.ReservationDate,
		ReservationTime: current.ReservationTime,
		Status:          current.Status,
	}
	var changes []FieldChange
	seatingChanged := false

	if req.GuestCount != nil && guests != current.GuestCount {
		params.GuestCount = guests
		seatingChanged = true
		changes = append(changes, FieldChange{Field: "guest_count", Value: fmt.Sprint(guests)})
	}
	if req.ReservationDate != nil && !date.Time.Equal(current.ReservationDate.Time) {
		params.ReservationDate = date
		changes = append(changes, FieldChange{Field: "reservation_date", Value: date.Time.Format("2006-01-02")})
	}
	if req.ReservationTime != nil && clock != current.ReservationTime {
		params.ReservationTime = clock
		changes = append(changes, FieldChange{Field: "reservation_time", Value: clock})
	}
	if req.Status != nil && *req.Status != current.Status {
		params.Status = *req.Status
		changes = append(changes, FieldChange{Field: "status", Value: *req.Status})
	}
	if req.Table.Set && tableID != current.TableID {
		params.TableID = tableID
		seatingChanged = true
		value := "none"
		if tableID.Valid {
			value = uuid.UUID(tableID.Bytes).String()
		}
		changes = append(changes, FieldChange{Field: "table", Value: value})
	}

	if len(changes) == 0 {
		return current, nil
	}

	// A status or schedule change must not fail because the table shrank
	// after the reservation was accepted.
	if seatingChanged {
		if err := checkTable(ctx, store, params.TableID, params.GuestCount); err != nil {
			return database.Reservation{}, err
		}
	}

	updated, err := store.UpdateReservation(ctx, params)
	if err != nil {
		return database.Reservation{}, notFound(err, ErrReservationNotFound, "update reservation")
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Reservation{}, fmt.Errorf("commit tx: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:  req.ActorID,
		Action:   enum.ActionUpdate,
		Target:   enum.TargetReservation,
		TargetID: updated.ID,
		Message:  fmt.Sprintf("Update reservasi #%s [%s]", shortID(updated.ID), formatChanges(changes)),
	})

	return updated, nil
}

// DeleteReservation removes a reservation.
func (s *ReservationService) DeleteReservation(ctx context.Context, id, actorID uuid.UUID) (database.Reservation, error) {
	deleted, err := s.store.DeleteReservation(ctx, id)
	if err != nil {
		return database.Reservation{}, notFound(err, ErrReservationNotFound, "delete reservation")
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:  actorID,
		Action:   enum.ActionDelete,
		Target:   enum.TargetReservation,
		TargetID: deleted.ID,
		Message:  fmt.Sprintf("Reservasi #%s dihapus", shortID(deleted.ID)),
	})

	return deleted, nil
}

func checkTable(ctx context.Context, store ReservationStore, tableID pgtype.UUID, guests int32) error {
	if !tableID.Valid {
		return nil
	}
	table, err := store.GetTable(ctx, tableID.Bytes)
	if err != nil {
		return notFound(err, ErrTableNotFound, "get table")
	}
	if table.Capacity < guests {
		return &CapacityError{Capacity: table.Capacity, Guests: guests}
	}
	return nil
}

func validateGuestCount(n int64) (int32, error) {
	if n <= 0 || n > math.MaxInt32 {
		return 0, ErrInvalidGuestCount
	}
	return int32(n), nil
}

// parseReservationDate accepts YYYY-MM-DD or a full RFC 3339 timestamp, of
// which only the calendar date is kept.
func parseReservationDate(s string) (pgtype.Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		ts, err2 := time.Parse(time.RFC3339, s)
		if err2 != nil {
			return pgtype.Date{}, ErrInvalidDate
		}
		t = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

// normalizeReservationTime validates H:MM or HH:MM and returns HH:MM.
func normalizeReservationTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !reservationTimePattern.MatchString(s) {
		return "", ErrInvalidTime
	}
	if len(s) == 4 {
		s = "0" + s
	}
	return s, nil
}

// parseOptionalTable treats "", "none" and "null" as no table.
func parseOptionalTable(s string) (pgtype.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "null") {
		return pgtype.UUID{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, ErrInvalidTableID
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
