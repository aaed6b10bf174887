// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/store"
)

// Lifecycle applies the only poll mutations the engine allows: activate and
// close. Polls never return to draft.
type Lifecycle struct {
	polls  store.Polls
	logger *slog.Logger
}

func NewLifecycle(polls store.Polls, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{polls: polls, logger: logger}
}

// Activate moves a draft or closed poll to active.
func (l *Lifecycle) Activate(ctx context.Context, pollID string) (models.Poll, error) {
	return l.transition(ctx, pollID, models.StatusActive)
}

// Close moves a draft or active poll to closed.
func (l *Lifecycle) Close(ctx context.Context, pollID string) (models.Poll, error) {
	return l.transition(ctx, pollID, models.StatusClosed)
}

func (l *Lifecycle) transition(ctx context.Context, pollID, to string) (models.Poll, error) {
	poll, found, err := l.polls.FindPollByID(ctx, pollID)
	if err != nil {
		return models.Poll{}, storeError("find poll", err)
	}
	if !found {
		return models.Poll{}, reject(models.ReasonPollNotFound)
	}
	if poll.Status == to {
		return poll, nil
	}

	err = l.polls.UpdatePollStatus(ctx, poll.ID, to)
	if errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, reject(models.ReasonPollNotFound)
	}
	if err != nil {
		return models.Poll{}, storeError("update poll status", err)
	}

	l.logger.Info("poll status changed",
		"event", "poll_status_changed",
		"poll_id", poll.ID,
		"from", poll.Status,
		"to", to,
	)
	poll.Status = to
	return poll, nil
}

// Catalog answers read-only poll lookups.
type Catalog struct {
	polls store.Polls
	now   func() time.Time
}

func NewCatalog(polls store.Polls, now func() time.Time) *Catalog {
	if now == nil {
		now = time.Now
	}
	return &Catalog{polls: polls, now: now}
}

// Poll returns a poll with its options ordered by position.
func (c *Catalog) Poll(ctx context.Context, pollID string) (models.PollWithOptions, error) {
	poll, found, err := c.polls.FindPollByID(ctx, pollID)
	if err != nil {
		return models.PollWithOptions{}, storeError("find poll", err)
	}
	if !found {
		return models.PollWithOptions{}, reject(models.ReasonPollNotFound)
	}
	options, err := c.polls.FindOptionsByPollID(ctx, poll.ID)
	if err != nil {
		return models.PollWithOptions{}, storeError("find options", err)
	}
	return models.PollWithOptions{Poll: poll, Options: options}, nil
}

// ActiveByContent lists polls currently accepting votes for a content item,
// newest first.
func (c *Catalog) ActiveByContent(ctx context.Context, contentType, contentKey string) ([]models.Poll, error) {
	polls, err := c.polls.FindActivePollsByContent(ctx, contentType, contentKey, c.now().UTC())
	if err != nil {
		return nil, storeError("find active polls", err)
	}
	return polls, nil
}
