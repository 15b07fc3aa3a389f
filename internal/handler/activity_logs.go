package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/database"
)

const (
	defaultActivityLimit = 100
	maxActivityLimit     = 500
)

// ActivityLogStore defines the database methods needed by the audit trail
// endpoint. Satisfied by *database.Queries.
type ActivityLogStore interface {
	ListActivityLogs(ctx context.Context, arg database.ListActivityLogsParams) ([]database.ListActivityLogsRow, error)
}

// ActivityLogHandler serves the audit trail.
type ActivityLogHandler struct {
	store ActivityLogStore
}

// NewActivityLogHandler creates a new ActivityLogHandler.
func NewActivityLogHandler(store ActivityLogStore) *ActivityLogHandler {
	return &ActivityLogHandler{store: store}
}

// RegisterRoutes registers GET /. Expected to be mounted at /activity-logs
// behind admin-only middleware.
func (h *ActivityLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

type activityUserResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type activityLogResponse struct {
	ID        uuid.UUID             `json:"id"`
	UserID    *uuid.UUID            `json:"user_id"`
	User      *activityUserResponse `json:"user"`
	Action    string                `json:"action"`
	Target    string                `json:"target"`
	TargetID  uuid.UUID             `json:"target_id"`
	Message   string                `json:"message"`
	CreatedAt time.Time             `json:"created_at"`
}

// List returns entries newest first, filtered by ?user_id=, ?action= and
// ?target=, capped by ?limit=.
func (h *ActivityLogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := database.ListActivityLogsParams{
		Action: textFilter(q.Get("action")),
		Target: textFilter(q.Get("target")),
		Limit:  int32(parseLimit(r, defaultActivityLimit, maxActivityLimit)),
	}
	if s := q.Get("user_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "invalid user_id")
			return
		}
		params.UserID = pgtype.UUID{Bytes: id, Valid: true}
	}

	rows, err := h.store.ListActivityLogs(r.Context(), params)
	if err != nil {
		writeInternal(w, err, "list activity logs")
		return
	}

	resp := make([]activityLogResponse, len(rows))
	for i, row := range rows {
		entry := row.ActivityLog
		resp[i] = activityLogResponse{
			ID:        entry.ID,
			UserID:    uuidPtr(entry.UserID),
			Action:    entry.Action,
			Target:    entry.Target,
			TargetID:  entry.TargetID,
			Message:   entry.Message,
			CreatedAt: entry.CreatedAt,
		}
		if row.UserName.Valid {
			resp[i].User = &activityUserResponse{
				Name:  row.UserName.String,
				Email: row.UserEmail.String,
				Role:  row.UserRole.String,
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
