// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/content-vote/metrics"
	"github.com/danielhkuo/content-vote/middleware"
	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/store"
	"github.com/danielhkuo/content-vote/testutil"
	"github.com/danielhkuo/content-vote/voting"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *store.SQLStore) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.NewSQLStore(testutil.SetupTestDB(t), logger)
	cfg := testutil.GetTestConfig()
	m := metrics.New(prometheus.NewRegistry())

	mux := NewRouter(Deps{
		Engine: voting.NewEngine(s, voting.Options{
			MaxVotesPerInterval: cfg.MaxVotesPerInterval,
			Interval:            cfg.VoteInterval,
			Metrics:             m,
			Logger:              logger,
		}),
		Results:   voting.NewAggregator(s, m, logger),
		Polls:     voting.NewCatalog(s, nil),
		Lifecycle: voting.NewLifecycle(s, logger),
		Users:     s,
		Metrics:   m,
		Config:    cfg,
	})
	return mux, s
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "content-vote API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/no-such-route", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	// 400, 401, 404 are all valid responses depending on handler logic
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"GET", "/"},
		{"GET", "/polls"},
		{"GET", "/polls/test-id"},
		{"GET", "/polls/test-id/results"},
		{"POST", "/polls/test-id/votes"},
		{"POST", "/polls/test-id/activate"},
		{"POST", "/polls/test-id/close"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		name   string
		method string
		path   string
	}{
		{"POST to health endpoint", "POST", "/health"},
		{"GET to votes endpoint", "GET", "/polls/test-id/votes"},
		{"DELETE a poll", "DELETE", "/polls/test-id"},
		{"POST to results endpoint", "POST", "/polls/test-id/results"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

// TestVoteThroughRouter checks path parameters reach the handlers and that
// the vote shows up in both the results and the metrics endpoint.
func TestVoteThroughRouter(t *testing.T) {
	mux, s := newTestRouter(t)

	userID := testutil.CreateTestUser(t, s, models.RolePlayer, false)
	pollID, opts := testutil.CreateTestPoll(t, s, models.StatusActive, "a", "b")

	req := testutil.MakeRequest("POST", "/polls/"+pollID+"/votes",
		models.CastVoteRequest{OptionID: opts[1]},
		map[string]string{middleware.UserTokenHeader: testutil.UserToken(userID)})
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	req = httptest.NewRequest("GET", "/polls/"+pollID+"/results", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var summary models.ResultsSummary
	testutil.AssertJSON(t, w, &summary)
	if summary.Total != 1 || summary.Counts[opts[1]] != 1 {
		t.Errorf("Results = %v", summary.Counts)
	}

	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	body := w.Body.String()
	for _, want := range []string{
		`content_vote_vote_casts_total{reason="",result="accepted"} 1`,
		`content_vote_result_reads_total{outcome="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Metrics output missing %q", want)
		}
	}
}
