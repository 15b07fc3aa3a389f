//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rasa-pos/api/internal/activity"
	"github.com/rasa-pos/api/internal/config"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/notify"
	"github.com/rasa-pos/api/internal/router"
	"github.com/rasa-pos/api/internal/ws"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type testEnv struct {
	router chi.Router
	pool   *pgxpool.Pool
	admin  string
}

// TestIntegrationOrderLifecycle runs the full stack against a real PostgreSQL
// database: stock deduction, payment updates, audit rows and reservations.
func TestIntegrationOrderLifecycle(t *testing.T) {
	env := setupEnv(t)

	customerToken, customerID := registerCustomer(t, env, "budi@test.com")
	kasirToken := createStaff(t, env, "kasir@test.com", enum.UserRoleKasir)

	menuID := createMenuItem(t, env, "Nasi Goreng", 25000, 3)

	// Enough stock: 3 - 2 = 1
	rr := doAuthRequest(t, env.router, "POST", "/orders", customerToken, map[string]interface{}{
		"items": []map[string]interface{}{{"menu_item_id": menuID, "quantity": 2}},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create order: got %d; body: %s", rr.Code, rr.Body.String())
	}
	order := decodeResponse(t, rr)
	orderID := order["id"].(string)
	if order["customer_id"] != customerID {
		t.Errorf("customer_id: got %v, want %s", order["customer_id"], customerID)
	}
	if order["subtotal"] != float64(50000) {
		t.Errorf("subtotal: got %v, want 50000", order["subtotal"])
	}
	if got := menuStock(t, env, menuID); got != 1 {
		t.Fatalf("stock after first order: got %d, want 1", got)
	}

	// Not enough stock: nothing changes
	rr = doAuthRequest(t, env.router, "POST", "/orders", customerToken, map[string]interface{}{
		"items": []map[string]interface{}{{"menu_item_id": menuID, "quantity": 2}},
	})
	body := assertError(t, rr, http.StatusConflict, "insufficient_stock")
	details, _ := body["details"].(map[string]interface{})
	if details["available"] != float64(1) || details["requested"] != float64(2) {
		t.Errorf("stock details: got %v", body["details"])
	}
	if got := menuStock(t, env, menuID); got != 1 {
		t.Errorf("stock after rejected order: got %d, want 1", got)
	}
	if got := countRows(t, env.pool, `SELECT count(*) FROM orders`); got != 1 {
		t.Errorf("orders: got %d rows, want 1", got)
	}

	// Payment update leaves the kitchen status alone
	rr = doAuthRequest(t, env.router, "PATCH", "/orders/"+orderID, kasirToken, map[string]interface{}{
		"paymentStatus": "success",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update payment: got %d; body: %s", rr.Code, rr.Body.String())
	}
	updated := decodeResponse(t, rr)
	if updated["status"] != enum.OrderStatusPending || updated["paymentStatus"] != enum.PaymentStatusSuccess {
		t.Errorf("after payment: status=%v paymentStatus=%v", updated["status"], updated["paymentStatus"])
	}
	logged := countRows(t, env.pool,
		`SELECT count(*) FROM activity_logs WHERE target = 'Order' AND action = 'update' AND target_id::text = $1 AND message LIKE '%paymentStatus: success%'`,
		orderID)
	if logged != 1 {
		t.Errorf("payment activity rows: got %d, want 1", logged)
	}

	// Owner can read it back, with items joined
	rr = doAuthRequest(t, env.router, "GET", "/orders/"+orderID, customerToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get order: got %d; body: %s", rr.Code, rr.Body.String())
	}
	items, _ := decodeResponse(t, rr)["items"].([]interface{})
	if len(items) != 1 || items[0].(map[string]interface{})["menu_name"] != "Nasi Goreng" {
		t.Errorf("items: got %v", items)
	}

	// Served orders cannot go back
	for _, status := range []string{enum.OrderStatusCooking, enum.OrderStatusReady, enum.OrderStatusServed} {
		rr = doAuthRequest(t, env.router, "PATCH", "/orders/"+orderID, kasirToken, map[string]interface{}{"status": status})
		if rr.Code != http.StatusOK {
			t.Fatalf("advance to %s: got %d; body: %s", status, rr.Code, rr.Body.String())
		}
	}
	rr = doAuthRequest(t, env.router, "PATCH", "/orders/"+orderID, kasirToken, map[string]interface{}{"status": enum.OrderStatusCooking})
	assertError(t, rr, http.StatusConflict, "illegal_transition")
}

func TestIntegrationReservationCapacity(t *testing.T) {
	env := setupEnv(t)

	customerToken, customerID := registerCustomer(t, env, "sari@test.com")

	rr := doAuthRequest(t, env.router, "POST", "/tables", env.admin, map[string]interface{}{
		"number":   4,
		"capacity": 4,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create table: got %d; body: %s", rr.Code, rr.Body.String())
	}
	tableID := decodeResponse(t, rr)["id"].(string)

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	rr = doAuthRequest(t, env.router, "POST", "/reservations", customerToken, map[string]interface{}{
		"table_id":         tableID,
		"guest_count":      6,
		"reservation_date": tomorrow,
		"reservation_time": "19:00",
	})
	body := assertError(t, rr, http.StatusBadRequest, "validation_failed")
	if body["error"] != "Kapasitas meja (4) tidak mencukupi untuk 6 tamu" {
		t.Errorf("error message: got %v", body["error"])
	}
	if got := countRows(t, env.pool, `SELECT count(*) FROM reservations`); got != 0 {
		t.Errorf("reservations: got %d rows, want 0", got)
	}

	rr = doAuthRequest(t, env.router, "POST", "/reservations", customerToken, map[string]interface{}{
		"table_id":         tableID,
		"guest_count":      4,
		"reservation_date": tomorrow,
		"reservation_time": "19:00",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create reservation: got %d; body: %s", rr.Code, rr.Body.String())
	}

	// The reservation keeps its customer alive.
	rr = doAuthRequest(t, env.router, "DELETE", "/users/"+customerID, env.admin, nil)
	body = assertError(t, rr, http.StatusConflict, "conflict")
	if body["error"] != "user still has orders or reservations" {
		t.Errorf("delete user: got %v", body["error"])
	}
	if got := countRows(t, env.pool, `SELECT count(*) FROM reservations WHERE customer_id = $1`, customerID); got != 1 {
		t.Errorf("reservations after delete attempt: got %d rows, want 1", got)
	}
}

// TestIntegrationConcurrentStock checks that parallel orders never oversell.
func TestIntegrationConcurrentStock(t *testing.T) {
	env := setupEnv(t)

	customerToken, _ := registerCustomer(t, env, "rina@test.com")
	menuID := createMenuItem(t, env, "Es Teh", 5000, 5)

	raw, err := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{{"menu_item_id": menuID, "quantity": 1}},
	})
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}

	const attempts = 10
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/orders", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+customerToken)
			rr := httptest.NewRecorder()
			env.router.ServeHTTP(rr, req)
			codes[i] = rr.Code
		}(i)
	}
	wg.Wait()

	created, rejected := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			rejected++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	if created != 5 || rejected != 5 {
		t.Errorf("created=%d rejected=%d, want 5 and 5", created, rejected)
	}
	if got := menuStock(t, env, menuID); got != 0 {
		t.Errorf("final stock: got %d, want 0", got)
	}
}

// --- Setup helpers ---

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	connStr := setupPostgresContainer(t, ctx)
	runMigrations(t, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	cfg := &config.Config{
		Port:           "8081",
		DatabaseURL:    connStr,
		JWTSecret:      testSecret,
		ImageDir:       t.TempDir(),
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	queries := database.New(pool)
	auditLog := activity.NewLogger(queries)

	hubCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	hub := ws.NewHub()
	go hub.Run(hubCtx)

	env := &testEnv{
		router: router.New(cfg, queries, pool, hub, auditLog, notify.Publisher(hub)),
		pool:   pool,
	}

	admin, err := queries.CreateUser(ctx, database.CreateUserParams{
		Name:           "Admin",
		Email:          "admin@test.com",
		HashedPassword: hashPassword(t, "password123"),
		Role:           enum.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	env.admin = login(t, env, admin.Email, "password123")
	return env
}

func setupPostgresContainer(t *testing.T, ctx context.Context) string {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}
	return connStr
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// go test runs in the package directory.
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

// --- API helpers ---

func login(t *testing.T, env *testEnv, email, password string) string {
	t.Helper()
	rr := doRequest(t, env.router, "POST", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: got %d; body: %s", email, rr.Code, rr.Body.String())
	}
	token, _ := decodeResponse(t, rr)["access_token"].(string)
	if token == "" {
		t.Fatalf("login %s: no access_token", email)
	}
	return token
}

func registerCustomer(t *testing.T, env *testEnv, email string) (string, string) {
	t.Helper()
	rr := doRequest(t, env.router, "POST", "/auth/register", map[string]string{
		"name":     "Pelanggan",
		"email":    email,
		"password": "password123",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: got %d; body: %s", email, rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	user, _ := resp["user"].(map[string]interface{})
	return resp["access_token"].(string), user["id"].(string)
}

func createStaff(t *testing.T, env *testEnv, email, role string) string {
	t.Helper()
	rr := doAuthRequest(t, env.router, "POST", "/users", env.admin, map[string]string{
		"name":     "Staff " + role,
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create %s: got %d; body: %s", role, rr.Code, rr.Body.String())
	}
	return login(t, env, email, "password123")
}

func createMenuItem(t *testing.T, env *testEnv, name string, price int64, stock int) string {
	t.Helper()
	rr := doMultipart(t, env.router, "POST", "/menu", env.admin, map[string]string{
		"name":     name,
		"price":    strconv.FormatInt(price, 10),
		"category": "Makanan",
		"stock":    strconv.Itoa(stock),
	}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create menu item: got %d; body: %s", rr.Code, rr.Body.String())
	}
	return decodeResponse(t, rr)["id"].(string)
}

func menuStock(t *testing.T, env *testEnv, menuID string) int {
	t.Helper()
	rr := doRequest(t, env.router, "GET", "/menu/"+menuID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get menu item: got %d; body: %s", rr.Code, rr.Body.String())
	}
	stock, _ := decodeResponse(t, rr)["stock"].(float64)
	return int(stock)
}

func countRows(t *testing.T, pool *pgxpool.Pool, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}
