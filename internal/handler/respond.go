package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/service"
	"github.com/rasa-pos/api/internal/storage"
	log "github.com/sirupsen/logrus"
)

// Machine-readable error codes returned in the "code" field.
const (
	codeValidation        = "validation_failed"
	codeNotFound          = "not_found"
	codeInsufficientStock = "insufficient_stock"
	codeIllegalTransition = "illegal_transition"
	codeConflict          = "conflict"
	codeForbidden         = "forbidden"
	codeUnauthorized      = "unauthorized"
	codeUnsupportedMedia  = "unsupported_media_type"
	codeInternal          = "internal"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeErrorDetails(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code, Details: details})
}

func writeInternal(w http.ResponseWriter, err error, op string) {
	log.WithError(err).WithField("op", op).Error("request failed")
	writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

var validationErrors = []error{
	service.ErrEmptyItems,
	service.ErrInvalidQuantity,
	service.ErrInvalidMenuItemID,
	service.ErrInvalidCustomerID,
	service.ErrInvalidTableID,
	service.ErrInvalidStatus,
	service.ErrInvalidPaymentStatus,
	service.ErrInvalidPaymentMethod,
	service.ErrInitialStatus,
	service.ErrNoFields,
	service.ErrInvalidGuestCount,
	service.ErrInvalidDate,
	service.ErrInvalidTime,
	storage.ErrUnsupportedType,
	storage.ErrTooLarge,
	storage.ErrEmptyFile,
}

var notFoundErrors = []error{
	service.ErrCustomerNotFound,
	service.ErrTableNotFound,
	service.ErrMenuItemNotFound,
	service.ErrOrderNotFound,
	service.ErrReservationNotFound,
}

// writeServiceError maps a service error onto a status, code and body.
// Anything unrecognised is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	var (
		stockErr      *service.StockError
		transitionErr *service.TransitionError
		missingErr    *service.MissingFieldsError
		capacityErr   *service.CapacityError
	)

	switch {
	case errors.As(err, &stockErr):
		writeErrorDetails(w, http.StatusConflict, codeInsufficientStock, stockErr.Error(), map[string]any{
			"index":        stockErr.Index,
			"menu_item_id": stockErr.MenuItemID,
			"name":         stockErr.Name,
			"requested":    stockErr.Requested,
			"available":    stockErr.Available,
		})
		return
	case errors.As(err, &transitionErr):
		writeErrorDetails(w, http.StatusConflict, codeIllegalTransition, transitionErr.Error(), map[string]any{
			"field": transitionErr.Field,
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
		return
	case errors.As(err, &missingErr):
		writeErrorDetails(w, http.StatusBadRequest, codeValidation, missingErr.Error(), map[string]any{
			"missing_fields": missingErr.Fields,
		})
		return
	case errors.As(err, &capacityErr):
		writeErrorDetails(w, http.StatusBadRequest, codeValidation, capacityErr.Error(), map[string]any{
			"capacity":    capacityErr.Capacity,
			"guest_count": capacityErr.Guests,
		})
		return
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusNotFound, codeNotFound, target.Error())
			return
		}
	}
	if isUniqueViolation(err) {
		writeError(w, http.StatusConflict, codeConflict, "resource already exists")
		return
	}
	if isForeignKeyViolation(err) {
		writeError(w, http.StatusConflict, codeConflict, "resource is still referenced")
		return
	}

	writeInternal(w, err, op)
}

// isUniqueViolation checks if the error is a unique constraint violation
// (pgconn error code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation checks for pgconn error code 23503.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// decodeJSON strictly decodes a single JSON object: unknown fields and
// trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}

// parseUUIDParam reads a chi URL parameter as a UUID and writes a 400 when it
// is malformed. ok is false when a response has been written.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parseLimit reads the "limit" query parameter, clamped to [1, max].
func parseLimit(r *http.Request, def, max int) int {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

// optionalString distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present.
type optionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// tableChange converts a table_id field into the service's tri-state form.
// null, "" and "none" all detach.
func (o optionalString) tableChange() service.TableChange {
	if !o.Set || o.Null || o.Value == "none" {
		return service.TableChange{Set: o.Set}
	}
	return service.TableChange{Set: true, ID: o.Value}
}

// --- pgtype conversion helpers ---

func uuidPtr(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func int4Ptr(n pgtype.Int4) *int32 {
	if !n.Valid {
		return nil
	}
	return &n.Int32
}

func textFilter(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
