// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/content-vote/cliparse"
	"github.com/danielhkuo/content-vote/middleware"
	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/store"
	"github.com/danielhkuo/content-vote/testutil"
	"github.com/danielhkuo/content-vote/voting"
)

type testEnv struct {
	db      *sqlx.DB
	store   *store.SQLStore
	cfg     cliparse.Config
	voting  *VotingHandler
	results *ResultsHandler
	polls   *PollHandler
}

// setupTestEnv wires every handler to one fresh SQLite store.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conn := testutil.SetupTestDB(t)
	s := store.NewSQLStore(conn, logger)
	cfg := testutil.GetTestConfig()

	engine := voting.NewEngine(s, voting.Options{
		MaxVotesPerInterval: cfg.MaxVotesPerInterval,
		Interval:            cfg.VoteInterval,
		Logger:              logger,
	})

	return &testEnv{
		db:      conn,
		store:   s,
		cfg:     cfg,
		voting:  NewVotingHandler(engine, cfg),
		results: NewResultsHandler(voting.NewAggregator(s, nil, logger), cfg),
		polls:   NewPollHandler(voting.NewCatalog(s, nil), voting.NewLifecycle(s, logger), s, cfg),
	}
}

func castVote(env *testEnv, pollID, token string, body interface{}) *httptest.ResponseRecorder {
	headers := map[string]string{}
	if token != "" {
		headers[middleware.UserTokenHeader] = token
	}
	req := testutil.MakeRequest(http.MethodPost, "/polls/"+pollID+"/votes", body, headers)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	env.voting.CastVote(w, req)
	return w
}

func getResults(t *testing.T, env *testEnv, pollID string) models.ResultsSummary {
	t.Helper()
	req := testutil.MakeRequest(http.MethodGet, "/polls/"+pollID+"/results", nil, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	env.results.GetResults(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var summary models.ResultsSummary
	testutil.AssertJSON(t, w, &summary)
	return summary
}
