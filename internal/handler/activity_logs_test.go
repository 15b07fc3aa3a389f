package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/handler"
	"github.com/rasa-pos/api/internal/middleware"
)

type mockActivityLogStore struct {
	listActivityLogsFn func(ctx context.Context, arg database.ListActivityLogsParams) ([]database.ListActivityLogsRow, error)
}

func (m *mockActivityLogStore) ListActivityLogs(ctx context.Context, arg database.ListActivityLogsParams) ([]database.ListActivityLogsRow, error) {
	return m.listActivityLogsFn(ctx, arg)
}

func setupActivityLogRouter(store *mockActivityLogStore) *chi.Mux {
	h := handler.NewActivityLogHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testSecret))
	r.Use(middleware.RequireRole(enum.UserRoleAdmin))
	r.Route("/activity-logs", h.RegisterRoutes)
	return r
}

func TestListActivityLogs_Filters(t *testing.T) {
	userID := uuid.New()
	var got database.ListActivityLogsParams
	store := &mockActivityLogStore{
		listActivityLogsFn: func(_ context.Context, arg database.ListActivityLogsParams) ([]database.ListActivityLogsRow, error) {
			got = arg
			return []database.ListActivityLogsRow{
				{
					ActivityLog: database.ActivityLog{
						ID:       uuid.New(),
						UserID:   pgtype.UUID{Bytes: userID, Valid: true},
						Action:   enum.ActionUpdate,
						Target:   enum.TargetOrder,
						TargetID: uuid.New(),
						Message:  "Update order #ORD-ABCD2345 [paymentStatus: success]",
					},
					UserName:  pgtype.Text{String: "Kasir Satu", Valid: true},
					UserEmail: pgtype.Text{String: "kasir@test.com", Valid: true},
					UserRole:  pgtype.Text{String: enum.UserRoleKasir, Valid: true},
				},
				{
					ActivityLog: database.ActivityLog{ID: uuid.New(), Action: enum.ActionDelete, Target: enum.TargetUser, Message: "Hapus user: x@test.com"},
				},
			}, nil
		},
	}
	router := setupActivityLogRouter(store)

	rr := doAuthRequest(t, router, "GET", "/activity-logs?user_id="+userID.String()+"&action=update&target=Order&limit=50", adminToken(t), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if !got.UserID.Valid || uuid.UUID(got.UserID.Bytes) != userID {
		t.Errorf("user_id filter: got %+v", got.UserID)
	}
	if got.Action.String != "update" || got.Target.String != "Order" || got.Limit != 50 {
		t.Errorf("unexpected params: %+v", got)
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp))
	}
	user, _ := resp[0]["user"].(map[string]interface{})
	if user["email"] != "kasir@test.com" {
		t.Errorf("user: got %v", resp[0]["user"])
	}
	if resp[1]["user"] != nil {
		t.Errorf("deleted user should be null, got %v", resp[1]["user"])
	}
}

func TestListActivityLogs_LimitDefaultsAndCap(t *testing.T) {
	tests := []struct {
		query string
		want  int32
	}{
		{"", 100},
		{"?limit=0", 100},
		{"?limit=abc", 100},
		{"?limit=9999", 500},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got int32
			store := &mockActivityLogStore{
				listActivityLogsFn: func(_ context.Context, arg database.ListActivityLogsParams) ([]database.ListActivityLogsRow, error) {
					got = arg.Limit
					return nil, nil
				},
			}
			router := setupActivityLogRouter(store)

			rr := doAuthRequest(t, router, "GET", "/activity-logs"+tt.query, adminToken(t), nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
			}
			if got != tt.want {
				t.Errorf("limit: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestListActivityLogs_AdminOnly(t *testing.T) {
	router := setupActivityLogRouter(&mockActivityLogStore{})

	rr := doAuthRequest(t, router, "GET", "/activity-logs", tokenFor(t, uuid.New(), enum.UserRoleKasir), nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestListActivityLogs_InvalidUserID(t *testing.T) {
	router := setupActivityLogRouter(&mockActivityLogStore{})

	rr := doAuthRequest(t, router, "GET", "/activity-logs?user_id=nope", adminToken(t), nil)
	assertError(t, rr, http.StatusBadRequest, "validation_failed")
}
