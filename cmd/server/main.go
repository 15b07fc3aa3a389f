package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rasa-pos/api/internal/activity"
	"github.com/rasa-pos/api/internal/config"
	"github.com/rasa-pos/api/internal/database"
	"github.com/rasa-pos/api/internal/notify"
	"github.com/rasa-pos/api/internal/router"
	"github.com/rasa-pos/api/internal/ws"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	log.Info("connected to database")

	if err := os.MkdirAll(cfg.ImageDir, 0o755); err != nil {
		log.Fatalf("create image dir: %v", err)
	}

	queries := database.New(pool)
	auditLog := activity.NewLogger(queries)

	hub := ws.NewHub()
	go hub.Run(ctx)

	var events notify.Publisher = hub
	if cfg.AMQPURL != "" {
		amqp, err := notify.DialAMQP(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("connect amqp: %v", err)
		}
		defer amqp.Close()
		events = notify.Multi{hub, amqp}
		log.Info("publishing order events to amqp")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, queries, pool, hub, auditLog, events),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
