// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/danielhkuo/content-vote/cliparse"
	"github.com/danielhkuo/content-vote/middleware"
	"github.com/danielhkuo/content-vote/models"
)

// ResultsReader is implemented by *voting.Aggregator.
type ResultsReader interface {
	Results(ctx context.Context, pollID string) (models.ResultsSummary, error)
}

type ResultsHandler struct {
	results ResultsReader
	cfg     cliparse.Config
}

func NewResultsHandler(results ResultsReader, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{results: results, cfg: cfg}
}

// GetResults handles GET /polls/{id}/results
// Results are live: they are readable in every poll state.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		reasonResponse(w, models.ReasonInvalidRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.StoreTimeout)
	defer cancel()

	summary, err := h.results.Results(ctx, pollID)
	if err != nil {
		errorResponse(w, err, "poll_id", pollID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summary)
}
