package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"finboard/internal/advisor"
	"finboard/internal/auth"
	"finboard/internal/cache"
	applog "finboard/internal/log"
	"finboard/internal/middleware/trace"
	"finboard/internal/services"
	"finboard/internal/store"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second

	summaryCacheSize = 256
	summaryCacheTTL  = 5 * time.Minute
	cleanupInterval  = 10 * time.Minute
)

// Server is the HTTP front of the dashboard API. All aggregation results
// are cached per user and invalidated on writes.
type Server struct {
	http.Server

	logger       *applog.Logger
	resolver     *auth.Resolver
	transactions *services.TransactionService
	summaries    *services.SummaryService
	advisor      *advisor.Preparer
	categories   store.CategoryStore

	summaryCache *cache.LRU[summaryView]
	monthlyCache *cache.LRU[[]monthlyPointView]
	cacheManager *cache.Manager
	tracer       *trace.Middleware
	metrics      *appMetrics
	startedAt    time.Time
}

// Deps collects everything the server needs. Advisor may be nil when no
// generator is configured; the recommendation endpoints then return empty
// results.
type Deps struct {
	Resolver     *auth.Resolver
	Transactions *services.TransactionService
	Summaries    *services.SummaryService
	Advisor      *advisor.Preparer
	Categories   store.CategoryStore
	Logger       *applog.Logger
}

// NewServer builds the server and registers all routes.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	s := &Server{
		logger:       logger,
		resolver:     deps.Resolver,
		transactions: deps.Transactions,
		summaries:    deps.Summaries,
		advisor:      deps.Advisor,
		categories:   deps.Categories,
		summaryCache: cache.NewLRU[summaryView](summaryCacheSize, summaryCacheTTL),
		monthlyCache: cache.NewLRU[[]monthlyPointView](summaryCacheSize, summaryCacheTTL),
		cacheManager: cache.NewManager(),
		tracer:       trace.NewMiddleware(extractClientIP),
		metrics:      &appMetrics{},
		startedAt:    time.Now(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.monthlyCache)
	s.cacheManager.StartCleanup(cleanupInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/", s.handleTransactionByID)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/summary/monthly", s.handleMonthly)
	mux.HandleFunc("/api/recommendations", s.handleRecommendations)
	mux.HandleFunc("/api/recommendations/refresh", s.handleRecommendationsRefresh)

	handler := applog.Middleware(logger)(s.tracer.Middleware(withSecurityHeaders(mux)))

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

// Shutdown stops background cache cleanup and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cacheManager.Stop()
	return s.Server.Shutdown(ctx)
}

// session resolves the caller from the Authorization header. A nil session
// with nil error means anonymous or expired; store failures are logged and
// treated as anonymous so read paths can degrade.
func (s *Server) session(r *http.Request) *auth.Session {
	sess, err := s.resolver.FromAuthorizationHeader(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		s.logger.ErrorWithCause(r.Context(), "session lookup failed", err,
			applog.FieldRequestID, trace.GetRequestID(r.Context()))
		return nil
	}
	return sess
}

// invalidateUserCaches drops cached aggregation results after a write.
func (s *Server) invalidateUserCaches(userID string) {
	s.summaryCache.Delete(userID)
	s.monthlyCache.Delete(userID)
}

// appMetrics tracks application-level counters exposed on /metrics.
type appMetrics struct {
	transactionsCreated int64
	transactionsDeleted int64
	cacheHits           int64
	cacheMisses         int64
	recommendationRuns  int64
}

func (m *appMetrics) incr(counter *int64) { atomic.AddInt64(counter, 1) }

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// extractClientIP prefers proxy headers over the socket address.
func extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
