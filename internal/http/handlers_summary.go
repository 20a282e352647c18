package http

import (
	"net/http"
)

// handleSummary serves the current-month financial summary. Results are
// cached per user until the next write or TTL expiry. Anonymous callers get
// a zero summary; this is a display path and never errors out.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	sess := s.session(r)
	if sess == nil {
		respondJSON(w, http.StatusOK, map[string]any{"summary": summaryView{}})
		return
	}

	if cached, ok := s.summaryCache.Get(sess.UserID); ok {
		s.metrics.incr(&s.metrics.cacheHits)
		respondJSON(w, http.StatusOK, map[string]any{"summary": cached})
		return
	}
	s.metrics.incr(&s.metrics.cacheMisses)

	view := summaryView{}
	if summary := s.summaries.FinancialSummary(r.Context(), sess); summary != nil {
		view = newSummaryView(*summary)
		s.summaryCache.Set(sess.UserID, view)
	}
	respondJSON(w, http.StatusOK, map[string]any{"summary": view})
}

// handleMonthly serves the trailing-twelve-months chart series.
func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	sess := s.session(r)
	if sess == nil {
		respondJSON(w, http.StatusOK, map[string]any{"months": []monthlyPointView{}})
		return
	}

	if cached, ok := s.monthlyCache.Get(sess.UserID); ok {
		s.metrics.incr(&s.metrics.cacheHits)
		respondJSON(w, http.StatusOK, map[string]any{"months": cached})
		return
	}
	s.metrics.incr(&s.metrics.cacheMisses)

	views := newMonthlyViews(s.summaries.MonthlyData(r.Context(), sess))
	// An empty series can mean a store failure; caching it would pin an
	// empty chart until the TTL expires.
	if len(views) > 0 {
		s.monthlyCache.Set(sess.UserID, views)
	}
	respondJSON(w, http.StatusOK, map[string]any{"months": views})
}
