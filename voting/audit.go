// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/store"
)

// LogAuditSink writes vote attempts to a logger.
type LogAuditSink struct {
	Logger *slog.Logger
}

func (s LogAuditSink) LogVoteAttempt(ctx context.Context, a models.VoteAttempt) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		"event", "vote_attempt",
		"poll_id", a.PollID,
		"user_id", a.UserID,
		"ip_hash", a.IPHash,
		"user_agent", a.UserAgent,
	}
	if a.VoteID != nil {
		attrs = append(attrs, "vote_id", *a.VoteID)
	}
	if a.Reason != nil {
		attrs = append(attrs, "reason", a.Reason.String())
	}
	logger.InfoContext(ctx, "vote attempt", attrs...)
	return nil
}

// MultiAuditSink fans an attempt out to every sink and joins their errors.
type MultiAuditSink []store.AuditSink

func (m MultiAuditSink) LogVoteAttempt(ctx context.Context, a models.VoteAttempt) error {
	var errs []error
	for _, sink := range m {
		if err := sink.LogVoteAttempt(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
