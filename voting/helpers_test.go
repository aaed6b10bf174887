// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/store"
	"github.com/danielhkuo/content-vote/testutil"
)

// testStore is what the backend-parameterised tests need from a store.
type testStore interface {
	store.Store
	store.Seeder
	CountVotesByPoll(ctx context.Context, pollID string) (int, error)
}

type backend struct {
	name string
	open func(t *testing.T) testStore
}

var backends = []backend{
	{"memory", func(t *testing.T) testStore { return store.NewMemory() }},
	{"sqlite", func(t *testing.T) testStore { return testutil.NewTestStore(t) }},
}

// forEachBackend runs fn once per store implementation.
func forEachBackend(t *testing.T, fn func(t *testing.T, s testStore)) {
	t.Helper()
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b.open(t))
		})
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(s store.Store, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return NewEngine(s, opts)
}

// fixedClock is a settable time source.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func countVotes(t *testing.T, s testStore, pollID string) int {
	t.Helper()
	n, err := s.CountVotesByPoll(context.Background(), pollID)
	if err != nil {
		t.Fatalf("CountVotesByPoll: %v", err)
	}
	return n
}

func mustCast(t *testing.T, e *Engine, req CastRequest) Outcome {
	t.Helper()
	out, err := e.CastVote(context.Background(), req)
	if err != nil {
		t.Fatalf("CastVote(%+v) error = %v", req, err)
	}
	return out
}

func wantAccepted(t *testing.T, out Outcome, changed bool) {
	t.Helper()
	if !out.Accepted {
		t.Fatalf("outcome rejected with %s, want accepted", out.Reason)
	}
	if out.VoteID == "" {
		t.Error("accepted outcome has empty vote id")
	}
	if out.Changed != changed {
		t.Errorf("Changed = %v, want %v", out.Changed, changed)
	}
}

func wantRejected(t *testing.T, out Outcome, reason models.ReasonCode) {
	t.Helper()
	if out.Accepted {
		t.Fatalf("outcome accepted (vote %s), want %s", out.VoteID, reason)
	}
	if out.Reason != reason {
		t.Errorf("Reason = %s, want %s", out.Reason, reason)
	}
}

var errBoom = errors.New("connection reset")

// faultyStore fails the named operation and delegates the rest.
type faultyStore struct {
	store.Store
	failOn string
}

func (f *faultyStore) FindUserByID(ctx context.Context, id string) (models.User, bool, error) {
	if f.failOn == "FindUserByID" {
		return models.User{}, false, errBoom
	}
	return f.Store.FindUserByID(ctx, id)
}

func (f *faultyStore) FindOptionsByPollID(ctx context.Context, pollID string) ([]models.Option, error) {
	if f.failOn == "FindOptionsByPollID" {
		return nil, errBoom
	}
	return f.Store.FindOptionsByPollID(ctx, pollID)
}

func (f *faultyStore) InsertVote(ctx context.Context, vote models.Vote) (string, error) {
	if f.failOn == "InsertVote" {
		return "", errBoom
	}
	return f.Store.InsertVote(ctx, vote)
}

func (f *faultyStore) UpdateVoteOption(ctx context.Context, voteID, optionID string, at time.Time) error {
	if f.failOn == "UpdateVoteOption" {
		return errBoom
	}
	return f.Store.UpdateVoteOption(ctx, voteID, optionID, at)
}

func (f *faultyStore) CountByPollGroupedByOption(ctx context.Context, pollID string) (map[string]int, error) {
	if f.failOn == "CountByPollGroupedByOption" {
		return nil, errBoom
	}
	return f.Store.CountByPollGroupedByOption(ctx, pollID)
}

func (f *faultyStore) UpdatePollStatus(ctx context.Context, pollID, status string) error {
	if f.failOn == "UpdatePollStatus" {
		return errBoom
	}
	return f.Store.UpdatePollStatus(ctx, pollID, status)
}

// staleReadStore hides existing votes from FindVoteByUserAndPoll for the
// first misses calls, reproducing a request that loses the insert race.
type staleReadStore struct {
	store.Store
	misses int
}

func (s *staleReadStore) FindVoteByUserAndPoll(ctx context.Context, userID, pollID string) (models.Vote, bool, error) {
	if s.misses > 0 {
		s.misses--
		return models.Vote{}, false, nil
	}
	return s.Store.FindVoteByUserAndPoll(ctx, userID, pollID)
}

type failingAudit struct{}

func (failingAudit) LogVoteAttempt(context.Context, models.VoteAttempt) error {
	return errBoom
}
