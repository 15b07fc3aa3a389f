package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rasa-pos/api/internal/auth"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/handler"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock store ---

type mockAuthStore struct {
	userByEmail map[string]database.User
	userByID    map[uuid.UUID]database.User
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{
		userByEmail: make(map[string]database.User),
		userByID:    make(map[uuid.UUID]database.User),
	}
}

func (m *mockAuthStore) addUser(u database.User) {
	m.userByEmail[strings.ToLower(u.Email)] = u
	m.userByID[u.ID] = u
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	u, ok := m.userByEmail[strings.ToLower(email)]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.userByID[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	if _, ok := m.userByEmail[arg.Email]; ok {
		return database.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	u := database.User{
		ID:             uuid.New(),
		Name:           arg.Name,
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		Role:           arg.Role,
	}
	m.addUser(u)
	return u, nil
}

func makeTestUser(t *testing.T, role string) database.User {
	t.Helper()
	return database.User{
		ID:             uuid.New(),
		Name:           "Test Kasir",
		Email:          "kasir@test.com",
		HashedPassword: hashPassword(t, "correct-password"),
		Role:           role,
	}
}

func setupAuthRouter(store *mockAuthStore, rec *recordingActivity) *chi.Mux {
	h := handler.NewAuthHandler(store, rec, testSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// --- Login tests ---

func TestLogin_ValidCredentials(t *testing.T) {
	store := newMockAuthStore()
	store.addUser(makeTestUser(t, enum.UserRoleKasir))
	r := setupAuthRouter(store, &recordingActivity{})

	rr := doRequest(t, r, "POST", "/auth/login", map[string]string{
		"email":    "kasir@test.com",
		"password": "correct-password",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	access, _ := resp["access_token"].(string)
	if access == "" {
		t.Fatal("expected non-empty access_token")
	}
	if resp["refresh_token"] == nil || resp["refresh_token"] == "" {
		t.Error("expected non-empty refresh_token")
	}

	claims, err := auth.ValidateToken(testSecret, access)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.Role != enum.UserRoleKasir {
		t.Errorf("token role: got %s, want kasir", claims.Role)
	}

	userResp, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if userResp["email"] != "kasir@test.com" {
		t.Errorf("user email: got %v", userResp["email"])
	}
	if _, leaked := userResp["hashed_password"]; leaked {
		t.Error("hashed_password must not be returned")
	}
}

func TestLogin_RoleMismatch(t *testing.T) {
	store := newMockAuthStore()
	store.addUser(makeTestUser(t, enum.UserRoleKasir))
	r := setupAuthRouter(store, &recordingActivity{})

	rr := doRequest(t, r, "POST", "/auth/login", map[string]string{
		"email":    "kasir@test.com",
		"password": "correct-password",
		"role":     enum.UserRoleAdmin,
	})
	assertError(t, rr, http.StatusForbidden, "forbidden")
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockAuthStore()
	store.addUser(makeTestUser(t, enum.UserRoleKasir))
	r := setupAuthRouter(store, &recordingActivity{})

	rr := doRequest(t, r, "POST", "/auth/login", map[string]string{
		"email":    "kasir@test.com",
		"password": "wrong-password",
	})
	assertError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestLogin_UserNotFound(t *testing.T) {
	r := setupAuthRouter(newMockAuthStore(), &recordingActivity{})

	rr := doRequest(t, r, "POST", "/auth/login", map[string]string{
		"email":    "nobody@test.com",
		"password": "password",
	})
	assertError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestLogin_MissingFields(t *testing.T) {
	r := setupAuthRouter(newMockAuthStore(), &recordingActivity{})

	rr := doRequest(t, r, "POST", "/auth/login", map[string]string{"email": "kasir@test.com"})
	assertError(t, rr, http.StatusBadRequest, "validation_failed")
}

func TestLogin_UnknownField(t *testing.T) {
	r := setupAuthRouter(newMockAuthStore(), &recordingActivity{})

	rr := doRequest(t, r, "POST", "/auth/login", `{"email":"a@b.c","password":"x","is_admin":true}`)
	assertError(t, rr, http.StatusBadRequest, "validation_failed")
}

// --- Register tests ---

func TestRegister_CreatesCustomer(t *testing.T) {
	store := newMockAuthStore()
	rec := &recordingActivity{}
	r := setupAuthRouter(store, rec)

	rr := doRequest(t, r, "POST", "/auth/register", map[string]string{
		"name":     "Budi",
		"email":    "  Budi@Example.com ",
		"password": "rahasia123",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	u, ok := store.userByEmail["budi@example.com"]
	if !ok {
		t.Fatal("user not stored with normalized email")
	}
	if u.Role != enum.UserRoleCustomer {
		t.Errorf("role: got %s, want customer", u.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("rahasia123")); err != nil {
		t.Error("password not hashed with bcrypt")
	}
	if rec.count() != 1 || rec.entries[0].Message != "Registrasi user: budi@example.com" {
		t.Errorf("activity: %+v", rec.entries)
	}
}

func TestRegister_RoleFieldRejected(t *testing.T) {
	r := setupAuthRouter(newMockAuthStore(), &recordingActivity{})

	rr := doRequest(t, r, "POST", "/auth/register", map[string]string{
		"name":     "Mallory",
		"email":    "m@example.com",
		"password": "rahasia123",
		"role":     "admin",
	})
	assertError(t, rr, http.StatusBadRequest, "validation_failed")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMockAuthStore()
	existing := makeTestUser(t, enum.UserRoleCustomer)
	store.addUser(existing)
	r := setupAuthRouter(store, &recordingActivity{})

	rr := doRequest(t, r, "POST", "/auth/register", map[string]string{
		"name":     "Other",
		"email":    existing.Email,
		"password": "rahasia123",
	})
	assertError(t, rr, http.StatusConflict, "conflict")
}

func TestRegister_Validation(t *testing.T) {
	r := setupAuthRouter(newMockAuthStore(), &recordingActivity{})

	tests := []map[string]string{
		{"name": "", "email": "a@b.co", "password": "rahasia123"},
		{"name": "A", "email": "not-an-email", "password": "rahasia123"},
		{"name": "A", "email": "a@b.co", "password": "123"},
	}
	for _, body := range tests {
		rr := doRequest(t, r, "POST", "/auth/register", body)
		assertError(t, rr, http.StatusBadRequest, "validation_failed")
	}
}

// --- Refresh tests ---

func TestRefresh_Valid(t *testing.T) {
	store := newMockAuthStore()
	user := makeTestUser(t, enum.UserRoleKitchen)
	store.addUser(user)
	r := setupAuthRouter(store, &recordingActivity{})

	refresh, err := auth.GenerateRefreshToken(testSecret, user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := doRequest(t, r, "POST", "/auth/refresh", map[string]string{"refresh_token": refresh})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["access_token"] == "" {
		t.Error("expected access_token")
	}
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	store := newMockAuthStore()
	user := makeTestUser(t, enum.UserRoleKitchen)
	store.addUser(user)
	r := setupAuthRouter(store, &recordingActivity{})

	rr := doRequest(t, r, "POST", "/auth/refresh", map[string]string{
		"refresh_token": tokenFor(t, user.ID, user.Role),
	})
	assertError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestRefresh_UnknownUser(t *testing.T) {
	r := setupAuthRouter(newMockAuthStore(), &recordingActivity{})

	refresh, _ := auth.GenerateRefreshToken(testSecret, uuid.New())
	rr := doRequest(t, r, "POST", "/auth/refresh", map[string]string{"refresh_token": refresh})
	assertError(t, rr, http.StatusUnauthorized, "unauthorized")
}
