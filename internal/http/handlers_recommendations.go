package http

import (
	"errors"
	"net/http"

	"finboard/internal/advisor"
	applog "finboard/internal/log"
)

// handleRecommendations serves the current advice batch, reusing stored
// rows when they are fresh. Degrades to an empty list when no generator is
// configured or the caller is anonymous.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	if s.advisor == nil {
		respondJSON(w, http.StatusOK, map[string]any{"recommendations": []recommendationView{}})
		return
	}

	s.metrics.incr(&s.metrics.recommendationRuns)
	recs := s.advisor.Recommendations(r.Context(), s.session(r))
	respondJSON(w, http.StatusOK, map[string]any{"recommendations": newRecommendationViews(recs)})
}

// handleRecommendationsRefresh forces a new batch regardless of freshness.
func (s *Server) handleRecommendationsRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if s.advisor == nil {
		respondError(w, http.StatusServiceUnavailable, "recommendations disabled")
		return
	}

	sess := s.session(r)
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	s.metrics.incr(&s.metrics.recommendationRuns)
	recs, err := s.advisor.Regenerate(r.Context(), sess)
	if err != nil {
		s.logger.ErrorWithCause(r.Context(), "recommendation refresh failed", err,
			applog.FieldUserID, sess.UserID,
			applog.FieldOperation, applog.OpGenerate)
		if errors.Is(err, advisor.ErrMalformedResponse) {
			respondError(w, http.StatusBadGateway, "advisor returned malformed response")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to generate recommendations")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"recommendations": newRecommendationViews(recs)})
}
