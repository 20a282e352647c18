package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"finboard/internal/auth"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/services"
)

// addTransactionRequest mirrors the new-transaction form. Amount is the
// unsigned decimal string as typed; the sign comes from the type.
type addTransactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	Date        string `json:"date"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.addTransaction(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	categories := s.categoryIndex(r)

	tab := parseTab(r.URL.Query().Get("tab"))
	search := r.URL.Query().Get("q")

	txs := s.transactions.List(r.Context(), sess, categories, tab, search)
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": newTransactionViews(txs, categories),
	})
}

func (s *Server) addTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, ok := parseDate(req.Date)
	if !ok {
		respondJSON(w, http.StatusBadRequest, services.WriteResult{Success: false, Message: "invalid date"})
		return
	}

	sess := s.session(r)
	result, err := s.transactions.Add(r.Context(), sess, services.AddTransactionInput{
		Type:        core.TransactionType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Date:        date,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			respondJSON(w, http.StatusUnauthorized, result)
			return
		}
		respondJSON(w, http.StatusInternalServerError, result)
		return
	}
	if !result.Success {
		respondJSON(w, http.StatusBadRequest, result)
		return
	}

	s.metrics.incr(&s.metrics.transactionsCreated)
	s.invalidateUserCaches(sess.UserID)
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	sess := s.session(r)
	result, err := s.transactions.Delete(r.Context(), sess, id)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			respondJSON(w, http.StatusUnauthorized, result)
			return
		}
		respondJSON(w, http.StatusInternalServerError, result)
		return
	}
	if !result.Success {
		respondJSON(w, http.StatusBadRequest, result)
		return
	}

	s.metrics.incr(&s.metrics.transactionsDeleted)
	s.invalidateUserCaches(sess.UserID)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	cats, err := s.categories.ListCategories(r.Context())
	if err != nil {
		s.logger.ErrorWithCause(r.Context(), "failed to list categories", err,
			applog.FieldOperation, applog.OpList)
		cats = nil
	}

	views := make([]categoryView, 0, len(cats))
	for _, cat := range cats {
		views = append(views, newCategoryView(cat))
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": views})
}

// categoryIndex loads categories keyed by ID. Lookup failures degrade to an
// empty index so list rendering falls back to uncategorized defaults.
func (s *Server) categoryIndex(r *http.Request) map[string]core.Category {
	cats, err := s.categories.ListCategories(r.Context())
	if err != nil {
		s.logger.ErrorWithCause(r.Context(), "failed to load category index", err,
			applog.FieldOperation, applog.OpList)
		return map[string]core.Category{}
	}
	index := make(map[string]core.Category, len(cats))
	for _, cat := range cats {
		index[cat.ID] = cat
	}
	return index
}

func parseDate(raw string) (core.Date, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return core.Date{}, false
	}
	return core.DateOf(t), true
}
