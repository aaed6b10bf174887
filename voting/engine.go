// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/content-vote/metrics"
	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/policy"
	"github.com/danielhkuo/content-vote/store"
)

// DefaultVoteInterval is the rate-limit window used when Options.Interval is zero.
const DefaultVoteInterval = time.Hour

const auditTimeout = 2 * time.Second

// CastRequest is one vote submission. IP is stored as given; the HTTP adapter
// passes a salted hash rather than the raw address.
type CastRequest struct {
	UserID    string
	PollID    string
	OptionID  string
	IP        string
	UserAgent string
	// Change asks to move an existing vote to OptionID instead of rejecting
	// with ALREADY_VOTED.
	Change bool
}

// Outcome is either Accepted with a VoteID or rejected with a Reason.
type Outcome struct {
	Accepted bool
	VoteID   string
	Changed  bool
	Reason   models.ReasonCode
}

func accepted(voteID string, changed bool) Outcome {
	return Outcome{Accepted: true, VoteID: voteID, Changed: changed}
}

func rejected(reason models.ReasonCode) Outcome {
	return Outcome{Reason: reason}
}

type Options struct {
	MaxVotesPerInterval int
	Interval            time.Duration
	// Audit receives every attempt; nil means the store's own sink.
	Audit   store.AuditSink
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

// Engine casts votes. It holds no mutable state; the one-vote-per-(user,
// poll) guarantee comes from the store's uniqueness constraint.
type Engine struct {
	users    store.Users
	polls    store.Polls
	votes    store.Votes
	audit    store.AuditSink
	policy   policy.Policy
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewEngine(s store.Store, opts Options) *Engine {
	e := &Engine{
		users:    s,
		polls:    s,
		votes:    s,
		audit:    opts.Audit,
		policy:   policy.New(opts.MaxVotesPerInterval),
		interval: opts.Interval,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if e.audit == nil {
		e.audit = s
	}
	if e.interval <= 0 {
		e.interval = DefaultVoteInterval
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// CastVote validates the request and writes at most one vote row for
// (UserID, PollID). Not-found and policy denials come back as a rejected
// Outcome with a nil error; only store failures return an error, and those
// wrap ErrStore.
func (e *Engine) CastVote(ctx context.Context, req CastRequest) (Outcome, error) {
	out, err := e.castVote(ctx, req)
	if err != nil {
		e.metrics.ObserveCastError()
		e.logger.Error("vote cast failed",
			"event", "vote_cast_store_failed",
			"user_id", req.UserID,
			"poll_id", req.PollID,
			"error", err.Error(),
		)
		return Outcome{}, err
	}

	e.metrics.ObserveCast(out.Accepted, out.Changed, out.Reason)
	e.recordAttempt(ctx, req, out)
	if out.Accepted {
		e.logger.Info("vote accepted",
			"event", "vote_cast_accepted",
			"user_id", req.UserID,
			"poll_id", req.PollID,
			"option_id", req.OptionID,
			"vote_id", out.VoteID,
			"changed", out.Changed,
		)
	} else {
		e.logger.Info("vote rejected",
			"event", "vote_cast_rejected",
			"user_id", req.UserID,
			"poll_id", req.PollID,
			"reason", out.Reason.String(),
		)
	}
	return out, nil
}

func (e *Engine) castVote(ctx context.Context, req CastRequest) (Outcome, error) {
	user, found, err := e.users.FindUserByID(ctx, req.UserID)
	if err != nil {
		return Outcome{}, storeError("find user", err)
	}
	if !found {
		return rejected(models.ReasonUserNotFound), nil
	}

	poll, found, err := e.polls.FindPollByID(ctx, req.PollID)
	if err != nil {
		return Outcome{}, storeError("find poll", err)
	}
	if !found {
		return rejected(models.ReasonPollNotFound), nil
	}

	// Re-read the options on every cast: the set may have changed since the
	// caller looked.
	options, err := e.polls.FindOptionsByPollID(ctx, poll.ID)
	if err != nil {
		return Outcome{}, storeError("find options", err)
	}
	if !hasOption(options, req.OptionID) {
		return rejected(models.ReasonOptionNotInPoll), nil
	}

	existing, hasVote, err := e.votes.FindVoteByUserAndPoll(ctx, user.ID, poll.ID)
	if err != nil {
		return Outcome{}, storeError("find vote", err)
	}

	now := e.now().UTC()
	recent, err := e.votes.CountRecentVotesByUser(ctx, user.ID, now.Add(-e.interval))
	if err != nil {
		return Outcome{}, storeError("count recent votes", err)
	}

	in := policy.Input{
		User:            user,
		Poll:            poll,
		Now:             now,
		RecentVotes:     recent,
		ChangeRequested: req.Change,
	}
	if hasVote {
		in.ExistingVote = &existing
	}
	if d := e.policy.Decide(in); !d.Allowed {
		return rejected(d.Reason), nil
	}

	if hasVote {
		return e.changeVote(ctx, existing, req.OptionID, now)
	}

	vote := models.Vote{
		PollID:    poll.ID,
		OptionID:  req.OptionID,
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
		IPHash:    optional(req.IP),
		UserAgent: optional(req.UserAgent),
	}
	voteID, err := e.votes.InsertVote(ctx, vote)
	if errors.Is(err, store.ErrDuplicateVote) {
		// Another request for the same pair won the insert between our read
		// and our write.
		if !req.Change {
			return rejected(models.ReasonAlreadyVoted), nil
		}
		winner, found, err := e.votes.FindVoteByUserAndPoll(ctx, user.ID, poll.ID)
		if err != nil {
			return Outcome{}, storeError("find vote after conflict", err)
		}
		if !found {
			return Outcome{}, storeError("find vote after conflict", store.ErrNotFound)
		}
		return e.changeVote(ctx, winner, req.OptionID, now)
	}
	if err != nil {
		return Outcome{}, storeError("insert vote", err)
	}

	return accepted(voteID, false), nil
}

// changeVote moves an existing vote to optionID in place. Re-submitting the
// current option is accepted without a write.
func (e *Engine) changeVote(ctx context.Context, vote models.Vote, optionID string, now time.Time) (Outcome, error) {
	if vote.OptionID == optionID {
		return accepted(vote.ID, false), nil
	}
	if err := e.votes.UpdateVoteOption(ctx, vote.ID, optionID, now); err != nil {
		return Outcome{}, storeError("update vote", err)
	}
	return accepted(vote.ID, true), nil
}

// recordAttempt writes the audit entry. Its failure is logged and never
// changes the outcome.
func (e *Engine) recordAttempt(ctx context.Context, req CastRequest, out Outcome) {
	attempt := models.VoteAttempt{
		PollID:    req.PollID,
		UserID:    req.UserID,
		IPHash:    req.IP,
		UserAgent: req.UserAgent,
		At:        e.now().UTC(),
	}
	if out.Accepted {
		id := out.VoteID
		attempt.VoteID = &id
	} else {
		reason := out.Reason
		attempt.Reason = &reason
	}

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := e.audit.LogVoteAttempt(auditCtx, attempt); err != nil {
		e.logger.Warn("vote attempt audit failed",
			"event", "vote_audit_failed",
			"user_id", req.UserID,
			"poll_id", req.PollID,
			"error", err.Error(),
		)
	}
}

func hasOption(options []models.Option, optionID string) bool {
	for _, opt := range options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
