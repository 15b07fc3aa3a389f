package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rasa-pos/api/internal/activity"
	"github.com/rasa-pos/api/internal/config"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/enum"
	"github.com/rasa-pos/api/internal/handler"
	mw "github.com/rasa-pos/api/internal/middleware"
	"github.com/rasa-pos/api/internal/notify"
	"github.com/rasa-pos/api/internal/service"
	"github.com/rasa-pos/api/internal/storage"
	"github.com/rasa-pos/api/internal/ws"
	log "github.com/sirupsen/logrus"
)

const imagePrefix = "/images"

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, auditLog *activity.Logger, events notify.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", handler.Health(auditLog))

	images := storage.NewLocal(cfg.ImageDir, imagePrefix)
	r.Handle(imagePrefix+"/*", http.StripPrefix(imagePrefix+"/", http.FileServer(http.Dir(cfg.ImageDir))))

	authHandler := handler.NewAuthHandler(queries, auditLog, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	menuHandler := handler.NewMenuHandler(queries, images, auditLog)

	// WebSocket route (handles auth internally via query param)
	r.Handle("/ws/orders", ws.NewHandler(hub, cfg.JWTSecret, cfg.AllowedOrigins))

	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, auditLog, events)
	reservationService := service.NewReservationService(queries, pool, func(db database.DBTX) service.ReservationStore {
		return database.New(db)
	}, auditLog)

	r.Route("/menu", func(r chi.Router) {
		menuHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			menuHandler.RegisterAdminRoutes(r)
		})
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		orderHandler := handler.NewOrderHandler(orderService, queries)
		r.Route("/orders", orderHandler.RegisterRoutes)
		orderHandler.RegisterCustomerRoutes(r)

		reservationHandler := handler.NewReservationHandler(reservationService, queries)
		r.Route("/reservations", reservationHandler.RegisterRoutes)

		tableHandler := handler.NewTableHandler(queries, auditLog)
		r.Route("/tables", func(r chi.Router) {
			tableHandler.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				tableHandler.RegisterAdminRoutes(r)
			})
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			userHandler := handler.NewUserHandler(queries, auditLog)
			r.Route("/users", userHandler.RegisterRoutes)

			activityHandler := handler.NewActivityLogHandler(queries)
			r.Route("/activity-logs", activityHandler.RegisterRoutes)

			reportsHandler := handler.NewReportsHandler(queries)
			r.Route("/reports", reportsHandler.RegisterRoutes)
		})
	})

	log.Info("router initialized")
	return r
}
