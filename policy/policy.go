// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package policy

import (
	"time"

	"github.com/danielhkuo/content-vote/models"
)

// DefaultMaxVotesPerInterval is used when Policy.MaxVotesPerInterval is zero.
const DefaultMaxVotesPerInterval = 10

type Policy struct {
	MaxVotesPerInterval int
}

func New(maxVotesPerInterval int) Policy {
	return Policy{MaxVotesPerInterval: maxVotesPerInterval}
}

type Input struct {
	User            models.User
	Poll            models.Poll
	Now             time.Time
	ExistingVote    *models.Vote
	RecentVotes     int
	ChangeRequested bool
}

type Decision struct {
	Allowed bool
	Reason  models.ReasonCode
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason models.ReasonCode) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide evaluates the checks in a fixed order and returns the first failure.
// The already-voted check is skipped when the caller asks to change a vote.
func (p Policy) Decide(in Input) Decision {
	if in.User.Banned {
		return deny(models.ReasonUserBanned)
	}
	if !in.Poll.IsActiveAt(in.Now) {
		return deny(models.ReasonPollNotActive)
	}
	if in.ExistingVote != nil && !in.ChangeRequested {
		return deny(models.ReasonAlreadyVoted)
	}
	if in.RecentVotes >= p.limit() {
		return deny(models.ReasonTooManyVotes)
	}
	return allow()
}

func (p Policy) limit() int {
	if p.MaxVotesPerInterval <= 0 {
		return DefaultMaxVotesPerInterval
	}
	return p.MaxVotesPerInterval
}
