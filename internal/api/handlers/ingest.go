package handlers

import (
	"net/http"

	"github.com/stockpulse/backend/internal/ingest"
	"github.com/stockpulse/backend/pkg/config"
	"github.com/stockpulse/backend/pkg/logger"
)

// IngestHandler triggers price and news ingestion on demand
type IngestHandler struct {
	collector *ingest.Collector
	config    *config.Config
	logger    *logger.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(col *ingest.Collector, cfg *config.Config, log *logger.Logger) *IngestHandler {
	return &IngestHandler{
		collector: col,
		config:    cfg,
		logger:    log,
	}
}

// TriggerPrices runs price ingestion for a window of the universe
// POST /api/ingest/prices?limit=&offset=
func (h *IngestHandler) TriggerPrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(q.Get("offset"), "offset")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tickers := ingest.Universe(limit, offset)
	if len(tickers) == 0 {
		respondError(w, http.StatusBadRequest, "limit/offset selects no tickers")
		return
	}

	results, err := h.collector.IngestPrices(ctx, tickers, ingest.Config{Workers: h.config.Ingest.Workers})
	if err != nil {
		h.logger.WithError(err).Error("Price ingestion failed")
		respondError(w, http.StatusInternalServerError, "Price ingestion failed")
		return
	}

	respondJSON(w, http.StatusOK, summarize(results, func(r ingest.Result) int { return r.BarCount }, "bars"))
}

// TriggerNews runs news ingestion for every stored stock
// POST /api/ingest/news
func (h *IngestHandler) TriggerNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results, err := h.collector.IngestNews(ctx, ingest.Config{Workers: h.config.Ingest.Workers})
	if err != nil {
		h.logger.WithError(err).Error("News ingestion failed")
		respondError(w, http.StatusInternalServerError, "News ingestion failed")
		return
	}

	respondJSON(w, http.StatusOK, summarize(results, func(r ingest.Result) int { return r.NewsCount }, "articles"))
}

func summarize(results []ingest.Result, count func(ingest.Result) int, unit string) map[string]interface{} {
	succeeded := 0
	failed := 0
	total := 0
	failures := map[string]string{}
	for _, r := range results {
		if r.Error != nil {
			failed++
			failures[r.Ticker] = r.Error.Error()
			continue
		}
		succeeded++
		total += count(r)
	}

	out := map[string]interface{}{
		"success":   true,
		"succeeded": succeeded,
		"failed":    failed,
		unit:        total,
	}
	if failed > 0 {
		out["failures"] = failures
	}
	return out
}
