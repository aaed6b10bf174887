// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/content-vote/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateVote is returned by InsertVote when a vote for the same
	// (user, poll) already exists. No other constraint violation maps to it.
	ErrDuplicateVote = errors.New("vote already exists for user and poll")
)

type Users interface {
	FindUserByID(ctx context.Context, id string) (models.User, bool, error)
}

type Polls interface {
	FindPollByID(ctx context.Context, id string) (models.Poll, bool, error)
	// FindOptionsByPollID returns options ordered by position.
	FindOptionsByPollID(ctx context.Context, pollID string) ([]models.Option, error)
	// FindActivePollsByContent returns polls effectively active at now for
	// the content item, newest first.
	FindActivePollsByContent(ctx context.Context, contentType, contentKey string, now time.Time) ([]models.Poll, error)
	UpdatePollStatus(ctx context.Context, pollID, status string) error
}

type Votes interface {
	FindVoteByUserAndPoll(ctx context.Context, userID, pollID string) (models.Vote, bool, error)
	// InsertVote stores a new vote and returns its generated id.
	InsertVote(ctx context.Context, vote models.Vote) (string, error)
	UpdateVoteOption(ctx context.Context, voteID, optionID string, at time.Time) error
	CountByPollGroupedByOption(ctx context.Context, pollID string) (map[string]int, error)
	// CountRecentVotesByUser counts the user's vote rows written at or after since.
	CountRecentVotesByUser(ctx context.Context, userID string, since time.Time) (int, error)
}

type AuditSink interface {
	LogVoteAttempt(ctx context.Context, attempt models.VoteAttempt) error
}

// Store is the full repository contract every implementation satisfies.
type Store interface {
	Users
	Polls
	Votes
	AuditSink
}

// Seeder creates users and polls. Poll authoring and accounts live outside
// this service, so only tests and bootstrap tooling use it.
type Seeder interface {
	AddUser(ctx context.Context, user models.User) (string, error)
	AddPoll(ctx context.Context, poll models.Poll, options []models.Option) (string, []string, error)
}

// NopAuditSink discards vote attempts.
type NopAuditSink struct{}

func (NopAuditSink) LogVoteAttempt(context.Context, models.VoteAttempt) error {
	return nil
}
