// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/store"
	"github.com/danielhkuo/content-vote/testutil"
)

// TestCastVoteLifecycle walks one user through a first vote, a refused
// second vote and an explicit change, checking the tally after each step.
func TestCastVoteLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s testStore) {
		ctx := context.Background()
		engine := newTestEngine(s, Options{})
		agg := NewAggregator(s, nil, discardLogger())

		userID := testutil.CreateTestUser(t, s, models.RolePlayer, false)
		pollID, opts := testutil.CreateTestPoll(t, s, models.StatusActive, "option.first", "option.second")
		o1, o2 := opts[0], opts[1]

		first := mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: o1})
		wantAccepted(t, first, false)

		res, err := agg.Results(ctx, pollID)
		if err != nil {
			t.Fatalf("Results: %v", err)
		}
		if res.Total != 1 || res.Counts[o1] != 1 || res.Counts[o2] != 0 {
			t.Errorf("after first vote: total=%d counts=%v", res.Total, res.Counts)
		}
		if res.Percentages[o1] != 100 || res.Percentages[o2] != 0 {
			t.Errorf("after first vote: percentages=%v", res.Percentages)
		}

		again := mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: o2})
		wantRejected(t, again, models.ReasonAlreadyVoted)

		res, _ = agg.Results(ctx, pollID)
		if res.Counts[o1] != 1 || res.Counts[o2] != 0 {
			t.Errorf("refused vote changed counts: %v", res.Counts)
		}

		changed := mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: o2, Change: true})
		wantAccepted(t, changed, true)
		if changed.VoteID != first.VoteID {
			t.Errorf("change produced vote %s, want the original %s", changed.VoteID, first.VoteID)
		}

		res, _ = agg.Results(ctx, pollID)
		if res.Total != 1 || res.Counts[o1] != 0 || res.Counts[o2] != 1 {
			t.Errorf("after change: total=%d counts=%v", res.Total, res.Counts)
		}
		if n := countVotes(t, s, pollID); n != 1 {
			t.Errorf("vote rows = %d, want 1", n)
		}

		vote, found, err := s.FindVoteByUserAndPoll(ctx, userID, pollID)
		if err != nil || !found {
			t.Fatalf("FindVoteByUserAndPoll: found=%v err=%v", found, err)
		}
		if vote.OptionID != o2 {
			t.Errorf("stored option = %s, want %s", vote.OptionID, o2)
		}
		if vote.UpdatedAt.Before(vote.CreatedAt) {
			t.Errorf("updated_at %v before created_at %v", vote.UpdatedAt, vote.CreatedAt)
		}
	})
}

func TestCastVoteRejections(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s testStore) {
		engine := newTestEngine(s, Options{})
		now := time.Now().UTC()
		past := now.Add(-time.Hour)
		future := now.Add(time.Hour)

		player := testutil.CreateTestUser(t, s, models.RolePlayer, false)
		banned := testutil.CreateTestUser(t, s, models.RolePlayer, true)

		active, activeOpts := testutil.CreateTestPoll(t, s, models.StatusActive, "a", "b")
		_, otherOpts := testutil.CreateTestPoll(t, s, models.StatusActive, "c")
		draft, draftOpts := testutil.CreateTestPoll(t, s, models.StatusDraft, "a")
		closed, closedOpts := testutil.CreateTestPoll(t, s, models.StatusClosed, "a")
		early, earlyOpts := testutil.CreateTestPollWith(t, s, models.Poll{Status: models.StatusActive, StartsAt: &future}, "a")
		ended, endedOpts := testutil.CreateTestPollWith(t, s, models.Poll{Status: models.StatusActive, EndsAt: &past}, "a")

		tests := []struct {
			name string
			req  CastRequest
			want models.ReasonCode
		}{
			{"unknown user", CastRequest{UserID: "nobody", PollID: active, OptionID: activeOpts[0]}, models.ReasonUserNotFound},
			{"unknown poll", CastRequest{UserID: player, PollID: "missing", OptionID: activeOpts[0]}, models.ReasonPollNotFound},
			{"option from another poll", CastRequest{UserID: player, PollID: active, OptionID: otherOpts[0]}, models.ReasonOptionNotInPoll},
			{"unknown option", CastRequest{UserID: player, PollID: active, OptionID: "missing"}, models.ReasonOptionNotInPoll},
			{"banned user", CastRequest{UserID: banned, PollID: active, OptionID: activeOpts[0]}, models.ReasonUserBanned},
			{"banned user on closed poll", CastRequest{UserID: banned, PollID: closed, OptionID: closedOpts[0]}, models.ReasonUserBanned},
			{"draft poll", CastRequest{UserID: player, PollID: draft, OptionID: draftOpts[0]}, models.ReasonPollNotActive},
			{"closed poll", CastRequest{UserID: player, PollID: closed, OptionID: closedOpts[0]}, models.ReasonPollNotActive},
			{"closed poll with change", CastRequest{UserID: player, PollID: closed, OptionID: closedOpts[0], Change: true}, models.ReasonPollNotActive},
			{"not started", CastRequest{UserID: player, PollID: early, OptionID: earlyOpts[0]}, models.ReasonPollNotActive},
			{"ended", CastRequest{UserID: player, PollID: ended, OptionID: endedOpts[0]}, models.ReasonPollNotActive},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				out := mustCast(t, engine, tt.req)
				wantRejected(t, out, tt.want)
				if out.VoteID != "" {
					t.Errorf("rejected outcome carries vote id %q", out.VoteID)
				}
			})
		}

		for _, pollID := range []string{active, draft, closed, early, ended} {
			if n := countVotes(t, s, pollID); n != 0 {
				t.Errorf("poll %s has %d votes after rejections, want 0", pollID, n)
			}
		}
	})
}

func TestCastVoteSameOptionChangeIsNoop(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s testStore) {
		engine := newTestEngine(s, Options{})
		userID := testutil.CreateTestUser(t, s, models.RolePlayer, false)
		pollID, opts := testutil.CreateTestPoll(t, s, models.StatusActive, "a", "b")

		first := mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0]})
		wantAccepted(t, first, false)

		for i := 0; i < 3; i++ {
			out := mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0], Change: true})
			wantAccepted(t, out, false)
			if out.VoteID != first.VoteID {
				t.Errorf("resubmission %d returned vote %s, want %s", i, out.VoteID, first.VoteID)
			}
		}

		counts, err := s.CountByPollGroupedByOption(context.Background(), pollID)
		if err != nil {
			t.Fatalf("CountByPollGroupedByOption: %v", err)
		}
		if counts[opts[0]] != 1 || counts[opts[1]] != 0 {
			t.Errorf("counts = %v, want one vote on the first option", counts)
		}
	})
}

func TestCastVoteChangeWithoutExistingVoteInserts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s testStore) {
		engine := newTestEngine(s, Options{})
		userID := testutil.CreateTestUser(t, s, models.RolePlayer, false)
		pollID, opts := testutil.CreateTestPoll(t, s, models.StatusActive, "a")

		out := mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0], Change: true})
		wantAccepted(t, out, false)
		if n := countVotes(t, s, pollID); n != 1 {
			t.Errorf("vote rows = %d, want 1", n)
		}
	})
}

func TestCastVoteRateLimit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s testStore) {
		clock := &fixedClock{now: time.Now().UTC().Truncate(time.Second)}
		engine := newTestEngine(s, Options{
			MaxVotesPerInterval: 2,
			Interval:            time.Hour,
			Now:                 clock.Now,
		})
		userID := testutil.CreateTestUser(t, s, models.RolePlayer, false)

		var polls, options []string
		for i := 0; i < 4; i++ {
			pollID, opts := testutil.CreateTestPoll(t, s, models.StatusActive, "a", "b")
			polls = append(polls, pollID)
			options = append(options, opts[0])
		}

		wantAccepted(t, mustCast(t, engine, CastRequest{UserID: userID, PollID: polls[0], OptionID: options[0]}), false)
		clock.Advance(time.Minute)
		wantAccepted(t, mustCast(t, engine, CastRequest{UserID: userID, PollID: polls[1], OptionID: options[1]}), false)
		clock.Advance(time.Minute)

		limited := mustCast(t, engine, CastRequest{UserID: userID, PollID: polls[2], OptionID: options[2]})
		wantRejected(t, limited, models.ReasonTooManyVotes)
		if n := countVotes(t, s, polls[2]); n != 0 {
			t.Errorf("rate-limited poll has %d votes, want 0", n)
		}

		// ALREADY_VOTED is checked before the limit.
		dup := mustCast(t, engine, CastRequest{UserID: userID, PollID: polls[0], OptionID: options[0]})
		wantRejected(t, dup, models.ReasonAlreadyVoted)

		clock.Advance(time.Hour)
		wantAccepted(t, mustCast(t, engine, CastRequest{UserID: userID, PollID: polls[3], OptionID: options[3]}), false)
	})
}

// TestConcurrentFirstVotes fires many first votes for one (user, poll) at
// once. Exactly one may win; the rest must see ALREADY_VOTED.
func TestConcurrentFirstVotes(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s testStore) {
		engine := newTestEngine(s, Options{})
		userID := testutil.CreateTestUser(t, s, models.RolePlayer, false)
		pollID, opts := testutil.CreateTestPoll(t, s, models.StatusActive, "a", "b")

		const attempts = 10
		var accepted, alreadyVoted atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				out, err := engine.CastVote(context.Background(), CastRequest{
					UserID:   userID,
					PollID:   pollID,
					OptionID: opts[i%2],
				})
				if err != nil {
					t.Errorf("CastVote error: %v", err)
					return
				}
				switch {
				case out.Accepted:
					accepted.Add(1)
				case out.Reason == models.ReasonAlreadyVoted:
					alreadyVoted.Add(1)
				default:
					t.Errorf("unexpected rejection %s", out.Reason)
				}
			}(i)
		}
		wg.Wait()

		if accepted.Load() != 1 {
			t.Errorf("accepted = %d, want 1", accepted.Load())
		}
		if alreadyVoted.Load() != attempts-1 {
			t.Errorf("already voted = %d, want %d", alreadyVoted.Load(), attempts-1)
		}
		if n := countVotes(t, s, pollID); n != 1 {
			t.Errorf("vote rows = %d, want 1", n)
		}
	})
}

// TestConcurrentChanges sends change requests for one (user, poll) from
// many goroutines. All are accepted and a single row remains.
func TestConcurrentChanges(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s testStore) {
		engine := newTestEngine(s, Options{})
		userID := testutil.CreateTestUser(t, s, models.RolePlayer, false)
		pollID, opts := testutil.CreateTestPoll(t, s, models.StatusActive, "a", "b", "c")

		const attempts = 12
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				out, err := engine.CastVote(context.Background(), CastRequest{
					UserID:   userID,
					PollID:   pollID,
					OptionID: opts[i%len(opts)],
					Change:   true,
				})
				if err != nil {
					t.Errorf("CastVote error: %v", err)
					return
				}
				if !out.Accepted {
					t.Errorf("change rejected with %s", out.Reason)
				}
			}(i)
		}
		wg.Wait()

		if n := countVotes(t, s, pollID); n != 1 {
			t.Errorf("vote rows = %d, want 1", n)
		}
		counts, err := s.CountByPollGroupedByOption(context.Background(), pollID)
		if err != nil {
			t.Fatalf("CountByPollGroupedByOption: %v", err)
		}
		sum := 0
		for _, n := range counts {
			sum += n
		}
		if sum != 1 {
			t.Errorf("grouped counts sum to %d, want 1", sum)
		}
	})
}

func TestCastVoteLostInsertRace(t *testing.T) {
	tests := []struct {
		name        string
		change      bool
		option      int
		wantReason  models.ReasonCode
		wantChanged bool
		wantOption  int
	}{
		{"plain vote is refused", false, 1, models.ReasonAlreadyVoted, false, 0},
		{"change folds into update", true, 1, "", true, 1},
		{"change to same option", true, 0, "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			userID := testutil.CreateTestUser(t, mem, models.RolePlayer, false)
			pollID, opts := testutil.CreateTestPoll(t, mem, models.StatusActive, "a", "b")

			winner := mustCast(t, newTestEngine(mem, Options{}), CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0]})

			// The loser's lookup misses the winner's row, so it reaches the insert.
			engine := newTestEngine(&staleReadStore{Store: mem, misses: 1}, Options{})
			out := mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: opts[tt.option], Change: tt.change})

			if tt.wantReason != "" {
				wantRejected(t, out, tt.wantReason)
			} else {
				wantAccepted(t, out, tt.wantChanged)
				if out.VoteID != winner.VoteID {
					t.Errorf("vote id = %s, want winner %s", out.VoteID, winner.VoteID)
				}
			}

			vote, _, _ := mem.FindVoteByUserAndPoll(context.Background(), userID, pollID)
			if vote.OptionID != opts[tt.wantOption] {
				t.Errorf("stored option = %s, want %s", vote.OptionID, opts[tt.wantOption])
			}
			if n, _ := mem.CountVotesByPoll(context.Background(), pollID); n != 1 {
				t.Errorf("vote rows = %d, want 1", n)
			}
		})
	}
}

func TestCastVoteStoreFailures(t *testing.T) {
	ops := []string{"FindUserByID", "FindOptionsByPollID", "InsertVote", "UpdateVoteOption"}

	for _, op := range ops {
		t.Run(op, func(t *testing.T) {
			mem := store.NewMemory()
			userID := testutil.CreateTestUser(t, mem, models.RolePlayer, false)
			pollID, opts := testutil.CreateTestPoll(t, mem, models.StatusActive, "a", "b")

			change := false
			if op == "UpdateVoteOption" {
				mustCast(t, newTestEngine(mem, Options{}), CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0]})
				change = true
			}

			engine := newTestEngine(&faultyStore{Store: mem, failOn: op}, Options{})
			out, err := engine.CastVote(context.Background(), CastRequest{
				UserID: userID, PollID: pollID, OptionID: opts[1], Change: change,
			})
			if !errors.Is(err, ErrStore) {
				t.Fatalf("error = %v, want ErrStore", err)
			}
			if !errors.Is(err, errBoom) {
				t.Errorf("error = %v, want cause preserved", err)
			}
			if _, ok := ReasonOf(err); ok {
				t.Error("store failure carries a reason code")
			}
			if out != (Outcome{}) {
				t.Errorf("outcome = %+v, want zero value", out)
			}
		})
	}
}

func TestCastVoteCancelledContext(t *testing.T) {
	mem := store.NewMemory()
	userID := testutil.CreateTestUser(t, mem, models.RolePlayer, false)
	pollID, opts := testutil.CreateTestPoll(t, mem, models.StatusActive, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(mem, Options{}).CastVote(ctx, CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0]})
	if !errors.Is(err, ErrStore) || !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want ErrStore wrapping context.Canceled", err)
	}
}

func TestCastVoteAudit(t *testing.T) {
	mem := store.NewMemory()
	engine := newTestEngine(mem, Options{})
	userID := testutil.CreateTestUser(t, mem, models.RolePlayer, false)
	pollID, opts := testutil.CreateTestPoll(t, mem, models.StatusActive, "a")

	ok := mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0], IP: "hash-1", UserAgent: "client/1.0"})
	mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0]})

	attempts := mem.Attempts()
	if len(attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(attempts))
	}
	if attempts[0].VoteID == nil || *attempts[0].VoteID != ok.VoteID || attempts[0].Reason != nil {
		t.Errorf("accepted attempt = %+v", attempts[0])
	}
	if attempts[0].IPHash != "hash-1" || attempts[0].UserAgent != "client/1.0" {
		t.Errorf("accepted attempt lost client info: %+v", attempts[0])
	}
	if attempts[1].Reason == nil || *attempts[1].Reason != models.ReasonAlreadyVoted || attempts[1].VoteID != nil {
		t.Errorf("rejected attempt = %+v", attempts[1])
	}
}

func TestCastVoteAuditFailureDoesNotFailVote(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s testStore) {
		engine := newTestEngine(s, Options{Audit: failingAudit{}})
		userID := testutil.CreateTestUser(t, s, models.RolePlayer, false)
		pollID, opts := testutil.CreateTestPoll(t, s, models.StatusActive, "a")

		out := mustCast(t, engine, CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0]})
		wantAccepted(t, out, false)
		if n := countVotes(t, s, pollID); n != 1 {
			t.Errorf("vote rows = %d, want 1", n)
		}
	})
}

// cancelAfterInsert cancels the request context once the vote is stored.
type cancelAfterInsert struct {
	store.Store
	cancel context.CancelFunc
}

func (c *cancelAfterInsert) InsertVote(ctx context.Context, vote models.Vote) (string, error) {
	id, err := c.Store.InsertVote(ctx, vote)
	c.cancel()
	return id, err
}

func TestCastVoteAuditSurvivesCancellation(t *testing.T) {
	mem := store.NewMemory()
	userID := testutil.CreateTestUser(t, mem, models.RolePlayer, false)
	pollID, opts := testutil.CreateTestPoll(t, mem, models.StatusActive, "a")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine := newTestEngine(&cancelAfterInsert{Store: mem, cancel: cancel}, Options{Audit: mem})

	out, err := engine.CastVote(ctx, CastRequest{UserID: userID, PollID: pollID, OptionID: opts[0]})
	if err != nil {
		t.Fatalf("CastVote error: %v", err)
	}
	wantAccepted(t, out, false)
	if len(mem.Attempts()) != 1 {
		t.Errorf("attempts = %d, want 1", len(mem.Attempts()))
	}
}
