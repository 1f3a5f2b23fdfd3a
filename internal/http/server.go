// Package http exposes the ledger service as a JSON API.
package http

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"cashledger/internal/cache"
	"cashledger/internal/core"
	"cashledger/internal/export"
	"cashledger/internal/importer"
	"cashledger/internal/ledger"
	applog "cashledger/internal/log"
	"cashledger/internal/services"
)

// Ledger is the subset of the ledger service the API drives.
type Ledger interface {
	Entries() []core.Entry
	ActiveEntries() []core.Entry
	InactiveEntries() []core.Entry
	Entry(id string) (core.Entry, error)
	Status() string
	Version() uint64

	AddEntry(ctx context.Context, day core.Date, in services.EntryInput) (core.Entry, error)
	RecordCoupons(ctx context.Context, day core.Date, in services.CouponInput) (core.Entry, error)
	UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error)
	Deactivate(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	DeleteLastEntry(ctx context.Context, day core.Date) (core.Entry, error)
	ArchiveAll(ctx context.Context) (int, error)

	ImportText(ctx context.Context, mode importer.MergeMode, text string, strict bool) (importer.Result, error)
	ImportReader(ctx context.Context, mode importer.MergeMode, r io.Reader, strict bool) (importer.Result, error)

	DayAggregate(day core.Date) ledger.DayAggregate
	ClosingBalance(day core.Date) decimal.Decimal
	WithdrawalTotal(day core.Date) decimal.Decimal
	OpeningEntry(day core.Date) (core.Entry, bool)
}

var _ Ledger = (*services.LedgerService)(nil)

type Server struct {
	http.Server
	svc Ledger

	logger       *applog.Logger
	access       *applog.StructuredLogger
	rateLimiter  *rateLimiter
	security     securityMetrics
	requests     int64
	started      time.Time
	now          func() time.Time
	importStrict bool

	tables *cache.LRUCache[export.Table]
	series *cache.LRUCache[[]ledger.Period]
	caches *cache.Manager

	shutdownOnce sync.Once
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithImportStrict sets the default for imports that do not pass ?strict=.
func WithImportStrict(strict bool) Option {
	return func(s *Server) { s.importStrict = strict }
}

func WithLogger(logger *applog.Logger) Option {
	return func(s *Server) { s.logger = logger.WithComponent(applog.ComponentHTTP) }
}

// WithRateLimit caps mutating requests per client per minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.rateLimiter = newRateLimiter(perMinute) }
}

// NewServer configures routes, returning a ready-to-run server.
func NewServer(addr string, l Ledger, opts ...Option) *Server {
	s := &Server{
		svc:         l,
		logger:      applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(120),
		started:     time.Now(),
		now:         time.Now,
		tables:      cache.NewLRUCache[export.Table](32, 10*time.Minute),
		series:      cache.NewLRUCache[[]ledger.Period](16, 10*time.Minute),
		caches:      cache.NewManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.caches.Register(s.tables)
	s.caches.Register(s.series)
	s.caches.Register(s.rateLimiter.buckets)
	s.caches.StartCleanup(5 * time.Minute)
	s.access = applog.NewStructuredLogger(s.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/status", s.handleStatus)

	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("GET /api/entries/{id}", s.handleGetEntry)
	mux.HandleFunc("PUT /api/entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("POST /api/entries/{id}/deactivate", s.handleDeactivate)
	mux.HandleFunc("POST /api/entries/{id}/restore", s.handleRestore)
	mux.HandleFunc("POST /api/coupons", s.handleRecordCoupons)

	mux.HandleFunc("GET /api/days/{date}", s.handleDay)
	mux.HandleFunc("POST /api/days/{date}/undo", s.handleUndo)
	mux.HandleFunc("POST /api/archive", s.handleArchive)

	mux.HandleFunc("GET /api/series/{period}", s.handleSeries)
	mux.HandleFunc("GET /api/report", s.handleReport)

	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/export/{file}", s.handleExport)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           applog.Middleware(s.logger)(s.withMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds request ids, security headers, rate limiting on
// mutating requests and access logging.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&s.requests, 1)

		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		ctx := applog.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		s.access.LogHTTPStart(ctx, r, clientIP)

		if reason := suspicionReason(r); reason != "" {
			s.security.suspiciousRequests.Add(1)
			s.logger.WithComponent(applog.ComponentSecurity).WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path,
				"reason", reason)
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if ok, wait := s.rateLimiter.allow(clientIP); !ok {
				s.security.rateLimitHits.Add(1)
				s.logger.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method)
				ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded", "").
					Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds())))).
					Write(w)
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.access.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter captures the status code for access logs.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
