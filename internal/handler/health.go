package handler

import (
	"net/http"
)

// FailureCounter reports how many audit entries failed to persist.
// Satisfied by *activity.Logger.
type FailureCounter interface {
	Failures() int64
}

// Health reports liveness and the activity log failure count.
func Health(counter FailureCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":                "ok",
			"activity_log_failures": counter.Failures(),
		})
	}
}
