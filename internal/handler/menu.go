package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/activity"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/service"
	"github.com/rasa-pos/api/internal/storage"
	log "github.com/sirupsen/logrus"
)

const multipartMemory = 1 << 20

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context, category pgtype.Text) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
}

// ImageStore persists uploaded images. Satisfied by *storage.Local.
type ImageStore interface {
	Save(r io.Reader) (string, error)
	Delete(url string) error
}

// MenuHandler handles menu item endpoints.
type MenuHandler struct {
	store    MenuStore
	images   ImageStore
	activity service.ActivityRecorder
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, images ImageStore, recorder service.ActivityRecorder) *MenuHandler {
	return &MenuHandler{store: store, images: images, activity: recorder}
}

// RegisterRoutes registers the public read endpoints.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers the write endpoints. Expected to be mounted
// at /menu behind admin-only middleware.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Response types ---

type menuItemResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Category  string    `json:"category"`
	ImageURL  *string   `json:"image_url"`
	Stock     int32     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:        m.ID,
		Name:      m.Name,
		Price:     m.Price,
		Category:  m.Category,
		ImageURL:  textPtr(m.ImageUrl),
		Stock:     m.Stock,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// --- Handlers ---

// List returns the menu, optionally filtered by ?category=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context(), textFilter(r.URL.Query().Get("category")))
	if err != nil {
		writeInternal(w, err, "list menu items")
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu item.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "menu item not found")
			return
		}
		writeInternal(w, err, "get menu item")
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create adds a menu item from a multipart form: name, price, category,
// stock and an optional image file.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	var missing []string
	for _, f := range []string{"name", "price", "category"} {
		if _, set := form.value(f); !set {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		writeErrorDetails(w, http.StatusBadRequest, codeValidation, "missing required fields: "+strings.Join(missing, ", "),
			map[string]any{"missing_fields": missing})
		return
	}

	params := database.CreateMenuItemParams{}
	params.Name, _ = form.value("name")
	params.Category, _ = form.value("category")
	if params.Name == "" || params.Category == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "name and category must not be empty")
		return
	}
	price, err := form.price()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	params.Price = price
	if _, set := form.value("stock"); set {
		stock, err := form.stock()
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		params.Stock = stock
	}

	imageURL, err := h.saveImage(r)
	if err != nil {
		writeServiceError(w, err, "save menu image")
		return
	}
	if imageURL != "" {
		params.ImageUrl = pgtype.Text{String: imageURL, Valid: true}
	}

	item, err := h.store.CreateMenuItem(r.Context(), params)
	if err != nil {
		h.discardImage(imageURL)
		writeInternal(w, err, "create menu item")
		return
	}

	h.record(r, enum.ActionCreate, item.ID, "Tambah menu: "+item.Name)
	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update replaces the fields present in the multipart form. A new image
// replaces and deletes the old one.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	current, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "menu item not found")
			return
		}
		writeInternal(w, err, "get menu item")
		return
	}

	// Only sent fields go to the database; the rest stay NULL and keep their
	// stored value.
	params := database.UpdateMenuItemParams{ID: current.ID}
	if v, set := form.value("name"); set {
		if v == "" {
			writeError(w, http.StatusBadRequest, codeValidation, "name must not be empty")
			return
		}
		params.Name = pgtype.Text{String: v, Valid: true}
	}
	if v, set := form.value("category"); set {
		if v == "" {
			writeError(w, http.StatusBadRequest, codeValidation, "category must not be empty")
			return
		}
		params.Category = pgtype.Text{String: v, Valid: true}
	}
	if _, set := form.value("price"); set {
		price, err := form.price()
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		params.Price = pgtype.Int8{Int64: price, Valid: true}
	}
	if _, set := form.value("stock"); set {
		stock, err := form.stock()
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		params.Stock = pgtype.Int4{Int32: stock, Valid: true}
	}

	imageURL, err := h.saveImage(r)
	if err != nil {
		writeServiceError(w, err, "save menu image")
		return
	}
	if imageURL != "" {
		params.ImageUrl = pgtype.Text{String: imageURL, Valid: true}
	}

	item, err := h.store.UpdateMenuItem(r.Context(), params)
	if err != nil {
		h.discardImage(imageURL)
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "menu item not found")
			return
		}
		writeInternal(w, err, "update menu item")
		return
	}
	if imageURL != "" && current.ImageUrl.Valid {
		h.discardImage(current.ImageUrl.String)
	}

	h.record(r, enum.ActionUpdate, item.ID, "Update menu: "+item.Name)
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete removes a menu item and its image. Items referenced by orders
// cannot be deleted.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	item, err := h.store.DeleteMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, codeNotFound, "menu item not found")
			return
		}
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusConflict, codeConflict, "menu item is referenced by orders")
			return
		}
		writeInternal(w, err, "delete menu item")
		return
	}
	if item.ImageUrl.Valid {
		h.discardImage(item.ImageUrl.String)
	}

	h.record(r, enum.ActionDelete, item.ID, "Hapus menu: "+item.Name)
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

type menuForm struct {
	values map[string][]string
}

func (f menuForm) value(key string) (string, bool) {
	v, ok := f.values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return strings.TrimSpace(v[0]), true
}

func (f menuForm) price() (int64, error) {
	v, _ := f.value("price")
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.New("price must be a non-negative integer")
	}
	return n, nil
}

func (f menuForm) stock() (int32, error) {
	v, _ := f.value("stock")
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 || n > math.MaxInt32 {
		return 0, errors.New("stock must be a non-negative integer")
	}
	return int32(n), nil
}

// parseForm accepts only multipart/form-data and writes 415 otherwise.
func (h *MenuHandler) parseForm(w http.ResponseWriter, r *http.Request) (menuForm, bool) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		writeError(w, http.StatusUnsupportedMediaType, codeUnsupportedMedia, "menu items must be sent as multipart/form-data")
		return menuForm{}, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, fmt.Sprintf("invalid multipart form: %v", err))
		return menuForm{}, false
	}
	return menuForm{values: r.MultipartForm.Value}, true
}

// saveImage stores the "image" file if one was uploaded and returns its URL.
func (h *MenuHandler) saveImage(r *http.Request) (string, error) {
	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("read image: %w", err)
	}
	defer file.Close()
	return h.images.Save(file)
}

func (h *MenuHandler) discardImage(url string) {
	if url == "" {
		return
	}
	if err := h.images.Delete(url); err != nil {
		log.WithError(err).WithField("image_url", url).Warn("delete menu image")
	}
}

func (h *MenuHandler) record(r *http.Request, action string, id uuid.UUID, msg string) {
	h.activity.Record(r.Context(), activity.Entry{
		ActorID:  actorID(r),
		Action:   action,
		Target:   enum.TargetMenuItem,
		TargetID: id,
		Message:  msg,
	})
}
