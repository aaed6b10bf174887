// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// VoteUniqueConstraint names the (user_id, poll_id) constraint on vote. The
// store matches on it to tell a duplicate vote from any other violation.
const VoteUniqueConstraint = "uq_vote_user_poll"

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes every table created by CreateSchema.
func DropSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		DROP TABLE IF EXISTS vote_log;
		DROP TABLE IF EXISTS vote;
		DROP TABLE IF EXISTS option;
		DROP TABLE IF EXISTS poll;
		DROP TABLE IF EXISTS app_user;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

// The same DDL runs on PostgreSQL and SQLite. Timestamps are always written
// in UTC.
const schema = `
-- Users (owned by the auth subsystem; the engine reads id and banned)
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'player' CHECK (role IN ('player', 'admin')),
    banned BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    content_key TEXT NOT NULL DEFAULT '',
    title_key TEXT NOT NULL,
    description_key TEXT,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'closed')),
    starts_at TIMESTAMP,
    ends_at TIMESTAMP,
    created_by TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_poll_content ON poll(content_type, content_key, status);

-- Options
CREATE TABLE IF NOT EXISTS option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    label_key TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_option_poll_id ON option(poll_id);

-- Votes: at most one row per (user, poll)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    context_key TEXT,
    CONSTRAINT ` + VoteUniqueConstraint + ` UNIQUE (user_id, poll_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_poll_option ON vote(poll_id, option_id);
CREATE INDEX IF NOT EXISTS idx_vote_user_updated ON vote(user_id, updated_at);

-- Vote attempts (audit, append-only)
CREATE TABLE IF NOT EXISTS vote_log (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    vote_id TEXT,
    reason_code TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vote_log_poll_id ON vote_log(poll_id);
`
