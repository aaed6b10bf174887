// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danielhkuo/content-vote/models"
)

func TestObserveCast(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCast(true, false, "")
	m.ObserveCast(true, false, "")
	m.ObserveCast(true, true, "")
	m.ObserveCast(false, false, models.ReasonAlreadyVoted)
	m.ObserveCastError()

	tests := []struct {
		result, reason string
		want           float64
	}{
		{"accepted", "", 2},
		{"changed", "", 1},
		{"rejected", "ALREADY_VOTED", 1},
		{"rejected", "USER_BANNED", 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.casts.WithLabelValues(tt.result, tt.reason))
		if got != tt.want {
			t.Errorf("casts{%s,%s} = %v, want %v", tt.result, tt.reason, got, tt.want)
		}
	}
	if got := testutil.ToFloat64(m.castErrors); got != 1 {
		t.Errorf("cast errors = %v, want 1", got)
	}
}

func TestObserveResults(t *testing.T) {
	m := New(nil)
	m.ObserveResults(nil)
	m.ObserveResults(errors.New("boom"))
	m.ObserveResults(nil)

	if got := testutil.ToFloat64(m.resultReads.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok reads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.resultReads.WithLabelValues("error")); got != 1 {
		t.Errorf("error reads = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveCast(true, false, "")
	m.ObserveCastError()
	m.ObserveResults(nil)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d, want 404", w.Code)
	}
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveCast(true, false, "")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "content_vote_vote_casts_total") {
		t.Errorf("body missing cast counter:\n%s", w.Body.String())
	}
}
