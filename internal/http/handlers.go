package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports whether the storage backend answers. Category
// listing doubles as the probe because it is cheap and hits the database.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.categories.ListCategories(ctx); err != nil {
		s.logger.ErrorWithCause(ctx, "readiness probe failed", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	requests := s.tracer.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "uptime_seconds %d\n", int64(time.Since(s.startedAt).Seconds()))
	fmt.Fprintf(w, "http_requests_total %d\n", requests.TotalRequests)
	fmt.Fprintf(w, "http_last_request_duration_us %d\n", requests.LastDurationUS)
	fmt.Fprintf(w, "transactions_created_total %d\n", atomic.LoadInt64(&s.metrics.transactionsCreated))
	fmt.Fprintf(w, "transactions_deleted_total %d\n", atomic.LoadInt64(&s.metrics.transactionsDeleted))
	fmt.Fprintf(w, "summary_cache_hits_total %d\n", atomic.LoadInt64(&s.metrics.cacheHits))
	fmt.Fprintf(w, "summary_cache_misses_total %d\n", atomic.LoadInt64(&s.metrics.cacheMisses))
	fmt.Fprintf(w, "summary_cache_size %d\n", int64(s.summaryCache.Size()))
	fmt.Fprintf(w, "monthly_cache_size %d\n", int64(s.monthlyCache.Size()))
	fmt.Fprintf(w, "recommendation_runs_total %d\n", atomic.LoadInt64(&s.metrics.recommendationRuns))
}
