package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rasa-pos/api/internal/activity"
)

// Errors shared by the services. Validation errors map to 400, not-found to
// 404 and the conflict family to 409 at the HTTP boundary.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID    = errors.New("invalid menu_item_id")
	ErrInvalidCustomerID    = errors.New("invalid customer_id")
	ErrInvalidTableID       = errors.New("invalid table_id")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidPaymentStatus = errors.New("invalid paymentStatus")
	ErrInvalidPaymentMethod = errors.New("invalid paymentMethod")
	ErrInitialStatus        = errors.New("new orders must start in status pending")
	ErrNoFields             = errors.New("no fields to update")
	ErrMissingFields        = errors.New("missing required fields")
	ErrInvalidGuestCount    = errors.New("guest_count must be a positive number")
	ErrInvalidDate          = errors.New("reservation_date must be a valid date (YYYY-MM-DD)")
	ErrInvalidTime          = errors.New("reservation_time must be in HH:MM 24-hour format")

	ErrCustomerNotFound    = errors.New("customer not found")
	ErrTableNotFound       = errors.New("table not found")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrCapacityExceeded  = errors.New("table capacity exceeded")

	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")
)

// StockError reports the line item whose quantity could not be reserved.
type StockError struct {
	Index      int
	MenuItemID uuid.UUID
	Name       string
	Requested  int32
	Available  int32
}

func (e *StockError) Error() string {
	return fmt.Sprintf("item[%d]: insufficient stock for %s: requested %d, available %d",
		e.Index, e.Name, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// TransitionError reports a status change the state machine forbids.
type TransitionError struct {
	Field string
	From  string
	To    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s %s -> %s", e.Field, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// MissingFieldsError lists every required field absent from a request.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// CapacityError reports a reservation larger than the chosen table.
type CapacityError struct {
	Capacity int32
	Guests   int32
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Kapasitas meja (%d) tidak mencukupi untuk %d tamu", e.Capacity, e.Guests)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// ActivityRecorder appends audit entries. Satisfied by *activity.Logger.
type ActivityRecorder interface {
	Record(ctx context.Context, e activity.Entry)
}

// notFound maps pgx.ErrNoRows to the given sentinel and wraps anything else.
func notFound(err error, sentinel error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}
