package http

import (
	"bytes"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"cashledger/internal/cache"
	"cashledger/internal/core"
	"cashledger/internal/export"
	"cashledger/internal/ledger"
	applog "cashledger/internal/log"
)

// dayResponse is the per-day dashboard: aggregate, closing balance and the
// opening float suggested from the source day's withdrawals.
type dayResponse struct {
	Date             core.Date           `json:"date"`
	Aggregate        ledger.DayAggregate `json:"aggregate"`
	ClosingBalance   decimal.Decimal     `json:"closingBalance"`
	SuggestedOpening decimal.Decimal     `json:"suggestedOpening"`
	SuggestionSource core.Date           `json:"suggestionSource"`
	Opening          *core.Entry         `json:"opening,omitempty"`
	Entries          []core.Entry        `json:"entries"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	}).Write(w)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": s.svc.Status()}).Write(w)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := pathDate(r, s.now)
	if err != nil {
		ServiceError(err, "").Write(w)
		return
	}
	source, err := queryDate(r, "source", day.AddDays(-1))
	if err != nil {
		ServiceError(err, "").Write(w)
		return
	}

	resp := dayResponse{
		Date:             day,
		Aggregate:        s.svc.DayAggregate(day),
		ClosingBalance:   s.svc.ClosingBalance(day),
		SuggestedOpening: s.svc.WithdrawalTotal(source),
		SuggestionSource: source,
		Entries:          []core.Entry{},
	}
	if opening, ok := s.svc.OpeningEntry(day); ok {
		resp.Opening = &opening
	}
	for _, e := range s.svc.ActiveEntries() {
		if e.Date.Equal(day) {
			resp.Entries = append(resp.Entries, e)
		}
	}
	NewJSONResponse().Data(resp).Write(w)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	period := r.PathValue("period")
	var compute func([]core.Entry) []ledger.Period
	switch period {
	case "daily":
		compute = ledger.ComputeDailySeries
	case "weekly":
		compute = ledger.ComputeWeeklySeries
	case "monthly":
		compute = ledger.ComputeMonthlySeries
	default:
		NotFoundError("period must be daily, weekly or monthly").Write(w)
		return
	}

	// The version is read before the entries: a concurrent change can only
	// leave a newer rendering under an older key, which is never read again.
	key := cache.VersionKey(period, s.svc.Version())
	series, ok := s.series.Get(key)
	if !ok {
		series = compute(s.svc.Entries())
		s.series.Set(key, series)
	}
	NewJSONResponse().Data(series).Write(w)
}

// table renders view over the current snapshot, reusing the rendering while
// the ledger is unchanged.
func (s *Server) table(view ledger.View) (export.Table, error) {
	key := cache.VersionKey(string(view), s.svc.Version())
	if t, ok := s.tables.Get(key); ok {
		return t, nil
	}
	t, err := export.Build(view, s.svc.Entries())
	if err != nil {
		return export.Table{}, err
	}
	s.tables.Set(key, t)
	return t, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(ledger.ReportView(s.svc.Entries())).Write(w)
}

// handleExport serves /api/export/{view}.csv and /api/export/ledger.xlsx.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view, format, ok := splitExportFile(r.PathValue("file"))
	if !ok {
		NotFoundError("expected {view}.csv or ledger.xlsx").Write(w)
		return
	}
	var (
		buf         bytes.Buffer
		contentType string
		err         error
	)
	switch {
	case format == "csv":
		var table export.Table
		table, err = s.table(ledger.View(view))
		if err != nil {
			ServiceError(err, "").Write(w)
			return
		}
		contentType = export.ContentTypeCSV
		err = export.WriteCSV(&buf, table)
	case format == "xlsx" && view == "ledger":
		contentType = export.ContentTypeXLSX
		tables := make([]export.Table, 0, len(ledger.Views()))
		for _, v := range ledger.Views() {
			t, buildErr := s.table(v)
			if buildErr != nil {
				err = buildErr
				break
			}
			tables = append(tables, t)
		}
		if err == nil {
			err = export.WriteXLSX(&buf, tables...)
		}
	default:
		NotFoundError(fmt.Sprintf("no export for %s.%s", view, format)).Write(w)
		return
	}
	if err != nil {
		s.access.LogError(r.Context(), "Export failed", err, applog.ComponentHTTP, applog.OpExport,
			applog.NewFields().WithRequestID(w.Header().Get("X-Request-ID")))
		ErrorResponse(http.StatusInternalServerError, "export failed", "").Write(w)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(view, s.today(), format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleMetrics reports request and ledger counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", atomic.LoadInt64(&s.requests))

	fmt.Fprintf(w, "# HELP ledger_entries Current ledger entries by status\n")
	fmt.Fprintf(w, "# TYPE ledger_entries gauge\n")
	fmt.Fprintf(w, "ledger_entries{status=\"active\"} %d\n", len(s.svc.ActiveEntries()))
	fmt.Fprintf(w, "ledger_entries{status=\"inactive\"} %d\n\n", len(s.svc.InactiveEntries()))

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", s.security.rateLimitHits.Load())

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", s.security.suspiciousRequests.Load())

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.ActiveClients())

	tableHits, tableMisses := s.tables.Stats()
	seriesHits, seriesMisses := s.series.Stats()
	fmt.Fprintf(w, "# HELP view_cache_lookups_total Rendered view cache lookups\n")
	fmt.Fprintf(w, "# TYPE view_cache_lookups_total counter\n")
	fmt.Fprintf(w, "view_cache_lookups_total{result=\"hit\"} %d\n", tableHits+seriesHits)
	fmt.Fprintf(w, "view_cache_lookups_total{result=\"miss\"} %d\n\n", tableMisses+seriesMisses)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}
