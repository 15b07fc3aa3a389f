package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/handler"
	"github.com/rasa-pos/api/internal/middleware"
)

// --- Mock store ---

type mockTableStore struct {
	tables       map[uuid.UUID]database.Table
	orders       []database.ListOrdersRow
	reservations []database.ListReservationsRow
}

func newMockTableStore() *mockTableStore {
	return &mockTableStore{tables: make(map[uuid.UUID]database.Table)}
}

func (m *mockTableStore) ListTables(_ context.Context) ([]database.Table, error) {
	var result []database.Table
	for _, t := range m.tables {
		result = append(result, t)
	}
	return result, nil
}

func (m *mockTableStore) GetTable(_ context.Context, id uuid.UUID) (database.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return database.Table{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockTableStore) numberTaken(number int32, except uuid.UUID) bool {
	for _, t := range m.tables {
		if t.Number == number && t.ID != except {
			return true
		}
	}
	return false
}

func (m *mockTableStore) CreateTable(_ context.Context, arg database.CreateTableParams) (database.Table, error) {
	if m.numberTaken(arg.Number, uuid.Nil) {
		return database.Table{}, &pgconn.PgError{Code: "23505", ConstraintName: "tables_number_key"}
	}
	t := database.Table{ID: uuid.New(), Number: arg.Number, Capacity: arg.Capacity, Status: arg.Status}
	m.tables[t.ID] = t
	return t, nil
}

func (m *mockTableStore) UpdateTable(_ context.Context, arg database.UpdateTableParams) (database.Table, error) {
	t, ok := m.tables[arg.ID]
	if !ok {
		return database.Table{}, pgx.ErrNoRows
	}
	if m.numberTaken(arg.Number, arg.ID) {
		return database.Table{}, &pgconn.PgError{Code: "23505", ConstraintName: "tables_number_key"}
	}
	t.Number = arg.Number
	t.Capacity = arg.Capacity
	t.Status = arg.Status
	m.tables[arg.ID] = t
	return t, nil
}

func (m *mockTableStore) DeleteTable(_ context.Context, id uuid.UUID) (database.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return database.Table{}, pgx.ErrNoRows
	}
	delete(m.tables, id)
	return t, nil
}

func (m *mockTableStore) ListOrders(_ context.Context, arg database.ListOrdersParams) ([]database.ListOrdersRow, error) {
	var result []database.ListOrdersRow
	for _, o := range m.orders {
		if arg.TableID.Valid && o.Order.TableID != arg.TableID {
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

func (m *mockTableStore) ListReservations(_ context.Context, arg database.ListReservationsParams) ([]database.ListReservationsRow, error) {
	var result []database.ListReservationsRow
	for _, r := range m.reservations {
		if arg.TableID.Valid && r.Reservation.TableID != arg.TableID {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func setupTableRouter(store *mockTableStore, rec *recordingActivity) *chi.Mux {
	h := handler.NewTableHandler(store, rec)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testSecret))
	r.Route("/tables", func(r chi.Router) {
		h.RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.UserRoleAdmin))
			h.RegisterAdminRoutes(r)
		})
	})
	return r
}

func seedTable(store *mockTableStore, number, capacity int32) database.Table {
	t := database.Table{ID: uuid.New(), Number: number, Capacity: capacity, Status: enum.TableStatusAvailable}
	store.tables[t.ID] = t
	return t
}

// --- Tests ---

func TestCreateTable_DefaultStatus(t *testing.T) {
	store := newMockTableStore()
	rec := &recordingActivity{}
	router := setupTableRouter(store, rec)

	rr := doAuthRequest(t, router, "POST", "/tables", adminToken(t), map[string]int{"number": 3, "capacity": 4})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["status"] != enum.TableStatusAvailable {
		t.Errorf("status: got %v, want %s", resp["status"], enum.TableStatusAvailable)
	}
	if rec.count() != 1 || rec.entries[0].Message != "Tambah meja: 3" {
		t.Errorf("activity: %+v", rec.entries)
	}
}

func TestCreateTable_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing capacity", map[string]any{"number": 1}},
		{"zero capacity", map[string]any{"number": 1, "capacity": 0}},
		{"invalid status", map[string]any{"number": 1, "capacity": 2, "status": "Kosong"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTableRouter(newMockTableStore(), &recordingActivity{})
			rr := doAuthRequest(t, router, "POST", "/tables", adminToken(t), tt.body)
			assertError(t, rr, http.StatusBadRequest, "validation_failed")
		})
	}
}

func TestCreateTable_DuplicateNumber(t *testing.T) {
	store := newMockTableStore()
	seedTable(store, 5, 2)
	router := setupTableRouter(store, &recordingActivity{})

	rr := doAuthRequest(t, router, "POST", "/tables", adminToken(t), map[string]int{"number": 5, "capacity": 4})
	assertError(t, rr, http.StatusConflict, "conflict")
}

func TestCreateTable_RequiresAdmin(t *testing.T) {
	router := setupTableRouter(newMockTableStore(), &recordingActivity{})

	rr := doAuthRequest(t, router, "POST", "/tables", tokenFor(t, uuid.New(), enum.UserRoleKasir), map[string]int{"number": 5, "capacity": 4})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestGetTable_IncludesOrdersAndReservations(t *testing.T) {
	store := newMockTableStore()
	table := seedTable(store, 7, 4)
	ref := pgtype.UUID{Bytes: table.ID, Valid: true}
	store.orders = []database.ListOrdersRow{
		{Order: database.Order{ID: uuid.New(), TableID: ref, Status: enum.OrderStatusPending}, CustomerName: "Budi"},
		{Order: database.Order{ID: uuid.New(), Status: enum.OrderStatusPending}, CustomerName: "Lain"},
	}
	store.reservations = []database.ListReservationsRow{
		{Reservation: database.Reservation{ID: uuid.New(), TableID: ref, GuestCount: 2, ReservationTime: "19:00"}, CustomerName: "Sari"},
	}
	router := setupTableRouter(store, &recordingActivity{})

	rr := doAuthRequest(t, router, "GET", "/tables/"+table.ID.String(), tokenFor(t, uuid.New(), enum.UserRoleKasir), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["number"] != float64(7) {
		t.Errorf("number: got %v", resp["number"])
	}
	if orders, _ := resp["orders"].([]interface{}); len(orders) != 1 {
		t.Errorf("orders: got %v", resp["orders"])
	}
	if reservations, _ := resp["reservations"].([]interface{}); len(reservations) != 1 {
		t.Errorf("reservations: got %v", resp["reservations"])
	}
}

func TestUpdateTable_Partial(t *testing.T) {
	store := newMockTableStore()
	table := seedTable(store, 2, 4)
	rec := &recordingActivity{}
	router := setupTableRouter(store, rec)

	rr := doAuthRequest(t, router, "PUT", "/tables/"+table.ID.String(), adminToken(t), map[string]string{"status": enum.TableStatusOccupied})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	got := store.tables[table.ID]
	if got.Status != enum.TableStatusOccupied || got.Capacity != 4 || got.Number != 2 {
		t.Errorf("unexpected update: %+v", got)
	}
	if rec.count() != 1 || rec.entries[0].Message != "Update meja: 2" {
		t.Errorf("activity: %+v", rec.entries)
	}
}

func TestUpdateTable_NotFound(t *testing.T) {
	router := setupTableRouter(newMockTableStore(), &recordingActivity{})

	rr := doAuthRequest(t, router, "PUT", "/tables/"+uuid.NewString(), adminToken(t), map[string]int{"capacity": 6})
	assertError(t, rr, http.StatusNotFound, "not_found")
}

func TestDeleteTable(t *testing.T) {
	store := newMockTableStore()
	table := seedTable(store, 9, 2)
	rec := &recordingActivity{}
	router := setupTableRouter(store, rec)

	rr := doAuthRequest(t, router, "DELETE", "/tables/"+table.ID.String(), adminToken(t), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if rec.count() != 1 || rec.entries[0].Message != "Hapus meja: 9" {
		t.Errorf("activity: %+v", rec.entries)
	}
}
