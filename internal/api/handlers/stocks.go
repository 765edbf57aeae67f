package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/stockpulse/backend/internal/query"
	"github.com/stockpulse/backend/internal/stocks"
	"github.com/stockpulse/backend/pkg/logger"
)

// StockHandler serves the stock listing, detail and comparison endpoints
type StockHandler struct {
	service *query.Service
	logger  *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service *query.Service, log *logger.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  log,
	}
}

// List returns a scored, sorted page of the stock universe
// GET /api/stocks?search=&ordering=&page=&page_size=
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	opts := query.ListOptions{
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}

	var err error
	if opts.Page, err = intParam(q.Get("page"), "page"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.PageSize, err = intParam(q.Get("page_size"), "page_size"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.List(ctx, opts)
	if err != nil {
		var badReq *query.BadRequestError
		if errors.As(err, &badReq) {
			respondError(w, http.StatusBadRequest, badReq.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to list stocks")
		respondError(w, http.StatusInternalServerError, "Failed to list stocks")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// Detail returns one stock with its score, recent prices and news
// GET /api/stocks/{ticker}
func (h *StockHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	detail, err := h.service.Detail(ctx, ticker)
	if err != nil {
		if stocks.IsNotFound(err) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("stock %q not found", ticker))
			return
		}
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load stock detail")
		respondError(w, http.StatusInternalServerError, "Failed to load stock detail")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// Compare returns two stock details side by side
// GET /api/stocks/compare?stock1=&stock2=
func (h *StockHandler) Compare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	ticker1 := q.Get("stock1")
	ticker2 := q.Get("stock2")
	if ticker1 == "" || ticker2 == "" {
		respondError(w, http.StatusBadRequest, "stock1 and stock2 query parameters are required")
		return
	}

	comparison, err := h.service.Compare(ctx, ticker1, ticker2)
	if err != nil {
		var notFound *stocks.NotFoundError
		if errors.As(err, &notFound) {
			respondError(w, http.StatusNotFound, notFound.Error())
			return
		}
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"stock1": ticker1,
			"stock2": ticker2,
		}).Error("Failed to compare stocks")
		respondError(w, http.StatusInternalServerError, "Failed to compare stocks")
		return
	}

	respondJSON(w, http.StatusOK, comparison)
}

// intParam parses an optional integer query parameter. Empty input
// yields zero so the service applies its default.
func intParam(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", field)
	}
	return v, nil
}
