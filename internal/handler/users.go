package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rasa-pos/api/internal/activity"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/middleware"
	"github.com/rasa-pos/api/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// UserStore defines the database methods needed by user handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	ListUsers(ctx context.Context) ([]database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (database.User, error)
}

// UserHandler handles user CRUD endpoints.
type UserHandler struct {
	store    UserStore
	activity service.ActivityRecorder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore, recorder service.ActivityRecorder) *UserHandler {
	return &UserHandler{store: store, activity: recorder}
}

// RegisterRoutes registers user CRUD endpoints on the given Chi router.
// Expected to be mounted at /users behind admin-only middleware.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// --- Handlers ---

// List returns every user, newest first.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeInternal(w, err, "list users")
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single user.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "user not found")
			return
		}
		writeInternal(w, err, "get user")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Create adds a user with any role.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	email, err := normalizeEmail(req.Email)
	if name == "" || err != nil || req.Password == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "name, email, password, and role are required")
		return
	}
	if !enum.IsUserRole(req.Role) {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid role")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, codeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		writeInternal(w, err, "hash password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Name:           name,
		Email:          email,
		HashedPassword: string(hash),
		Role:           req.Role,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, codeConflict, "email already exists")
			return
		}
		writeInternal(w, err, "create user")
		return
	}

	h.record(r, enum.ActionCreate, user.ID, "Tambah user: "+user.Email)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Update applies a partial update. A new password is re-hashed.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if req.Name == nil && req.Email == nil && req.Password == nil && req.Role == nil {
		writeError(w, http.StatusBadRequest, codeValidation, service.ErrNoFields.Error())
		return
	}

	current, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "user not found")
			return
		}
		writeInternal(w, err, "get user")
		return
	}

	params := database.UpdateUserParams{
		ID:             current.ID,
		Name:           current.Name,
		Email:          current.Email,
		Role:           current.Role,
		HashedPassword: current.HashedPassword,
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			writeError(w, http.StatusBadRequest, codeValidation, "name must not be empty")
			return
		}
		params.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "invalid email")
			return
		}
		params.Email = email
	}
	if req.Role != nil {
		if !enum.IsUserRole(*req.Role) {
			writeError(w, http.StatusBadRequest, codeValidation, "invalid role")
			return
		}
		params.Role = *req.Role
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			writeError(w, http.StatusBadRequest, codeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			writeInternal(w, err, "hash password")
			return
		}
		params.HashedPassword = string(hash)
	}

	user, err := h.store.UpdateUser(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "user not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, codeConflict, "email already exists")
			return
		}
		writeInternal(w, err, "update user")
		return
	}

	h.record(r, enum.ActionUpdate, user.ID, "Update user: "+user.Email)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Delete removes a user. Users who still own orders or reservations cannot
// be deleted.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.UserID == id {
		writeError(w, http.StatusBadRequest, codeValidation, "cannot delete your own account")
		return
	}

	user, err := h.store.DeleteUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "user not found")
			return
		}
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusConflict, codeConflict, "user still has orders or reservations")
			return
		}
		writeInternal(w, err, "delete user")
		return
	}

	h.record(r, enum.ActionDelete, user.ID, "Hapus user: "+user.Email)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) record(r *http.Request, action string, id uuid.UUID, msg string) {
	h.activity.Record(r.Context(), activity.Entry{
		ActorID:  actorID(r),
		Action:   action,
		Target:   enum.TargetUser,
		TargetID: id,
		Message:  msg,
	})
}

// actorID returns the authenticated user, or uuid.Nil.
func actorID(r *http.Request) uuid.UUID {
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		return claims.UserID
	}
	return uuid.Nil
}
