// Package activity records the append-only audit trail of mutations.
//
// Writes are best-effort: they run after the primary mutation has committed,
// and a failed write is reported through the process log and a failure
// counter instead of being returned to the caller.
package activity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/database"
	log "github.com/sirupsen/logrus"
)

const defaultWriteTimeout = 5 * time.Second

// Entry describes one completed mutation.
type Entry struct {
	ActorID  uuid.UUID // uuid.Nil when no authenticated user performed the action
	Action   string
	Target   string
	TargetID uuid.UUID
	Message  string
}

// Store is satisfied by *database.Queries.
type Store interface {
	CreateActivityLog(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error)
}

// Logger writes entries to the activity_logs table.
type Logger struct {
	store    Store
	timeout  time.Duration
	failures atomic.Int64
}

func NewLogger(store Store) *Logger {
	return &Logger{store: store, timeout: defaultWriteTimeout}
}

// Record appends e. The write is detached from ctx cancellation so a client
// hanging up after a committed mutation does not lose the entry.
func (l *Logger) Record(ctx context.Context, e Entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()

	params := database.CreateActivityLogParams{
		Action:   e.Action,
		Target:   e.Target,
		TargetID: e.TargetID,
		Message:  e.Message,
	}
	if e.ActorID != uuid.Nil {
		params.UserID = pgtype.UUID{Bytes: e.ActorID, Valid: true}
	}

	if _, err := l.store.CreateActivityLog(ctx, params); err != nil {
		l.failures.Add(1)
		log.WithError(err).WithFields(log.Fields{
			"action":    e.Action,
			"target":    e.Target,
			"target_id": e.TargetID,
			"actor_id":  e.ActorID,
		}).Error("activity log write failed")
	}
}

// Failures returns how many entries could not be written since start-up.
func (l *Logger) Failures() int64 {
	return l.failures.Load()
}
