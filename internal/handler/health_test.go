package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rasa-pos/api/internal/handler"
)

type fixedCounter int64

func (c fixedCounter) Failures() int64 { return int64(c) }

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	handler.Health(fixedCounter(2)).ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["status"] != "ok" || resp["activity_log_failures"] != float64(2) {
		t.Errorf("unexpected body: %v", resp)
	}
}
