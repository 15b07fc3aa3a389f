package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rasa-pos/api/internal/report"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxTopItems     = 50
)

// ReportsHandler handles sales report endpoints.
type ReportsHandler struct {
	store report.Store
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store report.Store) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers report endpoints. Expected to be mounted at
// /reports behind admin-only middleware.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.Sales)
	r.Get("/sales/export", h.Export)
}

// Sales returns the sales report for ?from=&to= (inclusive dates).
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

// Export returns the same report as an XLSX workbook.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.build(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := sales.WriteXLSX(&buf); err != nil {
		writeInternal(w, err, "write sales workbook")
		return
	}

	last := sales.To.AddDate(0, 0, -1)
	filename := fmt.Sprintf("sales_%s_%s.xlsx", sales.From.Format("20060102"), last.Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck
}

func (h *ReportsHandler) build(w http.ResponseWriter, r *http.Request) (*report.Sales, bool) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return nil, false
	}

	top := report.DefaultTopItems
	if s := r.URL.Query().Get("top"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			top = v
		}
	}
	if top > maxTopItems {
		top = maxTopItems
	}

	sales, err := report.BuildSales(r.Context(), h.store, from, to, int32(top))
	if err != nil {
		writeInternal(w, err, "build sales report")
		return nil, false
	}
	return sales, true
}

// parseDateRange reads ?from= and ?to= as YYYY-MM-DD in Asia/Jakarta and
// returns the half-open range [from, to+1 day). start_date and end_date are
// accepted as aliases. Defaults to the last 30 days.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		loc = time.FixedZone("WIB", 7*3600)
	}

	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	startDate := today.AddDate(0, 0, -30)
	endDate := today.AddDate(0, 0, 1)

	q := r.URL.Query()
	if s := firstNonEmpty(q.Get("from"), q.Get("start_date")); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q: want YYYY-MM-DD", s)
		}
		startDate = t
	}
	if s := firstNonEmpty(q.Get("to"), q.Get("end_date")); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q: want YYYY-MM-DD", s)
		}
		endDate = t.AddDate(0, 0, 1)
	}

	if !startDate.Before(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("from must not be after to")
	}
	return startDate, endDate, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
