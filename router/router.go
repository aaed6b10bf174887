// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/content-vote/cliparse"
	"github.com/danielhkuo/content-vote/handlers"
	"github.com/danielhkuo/content-vote/metrics"
	"github.com/danielhkuo/content-vote/middleware"
	"github.com/danielhkuo/content-vote/store"
)

// Deps are the services the routes are served from.
type Deps struct {
	Engine    handlers.VoteCaster
	Results   handlers.ResultsReader
	Polls     handlers.PollReader
	Lifecycle handlers.PollLifecycle
	Users     store.Users
	Metrics   *metrics.Metrics
	Config    cliparse.Config
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(deps.Engine, deps.Config)
	resultsHandler := handlers.NewResultsHandler(deps.Results, deps.Config)
	pollHandler := handlers.NewPollHandler(deps.Polls, deps.Lifecycle, deps.Users, deps.Config)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	// Voting and results (user token)
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Poll lookups (public)
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListActive))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))

	// Lifecycle (admin)
	mux.HandleFunc("POST /polls/{id}/activate", middleware.WithLogging(pollHandler.ActivatePoll))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content-vote API v1"))
	})

	return mux
}
